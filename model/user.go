package model

import "time"

const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
)

// User is an OTP-authenticated identity. OTP and OTPExpiry churn on every
// login and are cleared together on successful verification (single use).
type User struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Username string `gorm:"column:username;size:64;not null;uniqueIndex" json:"username"`
	Email    string `gorm:"column:email;size:128;not null" json:"email"`
	Role     string `gorm:"column:role;size:32;not null" json:"role"`

	PasswordHash string `gorm:"column:password_hash;size:128;not null" json:"-"`

	OTP       *string    `gorm:"column:otp;size:8" json:"-"`
	OTPExpiry *time.Time `gorm:"column:otp_expiry" json:"-"`

	TrustedDevices []string `gorm:"column:trusted_devices;serializer:json" json:"trustedDevices"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// IsTrusted reports whether deviceID has completed OTP verification before.
func (u *User) IsTrusted(deviceID string) bool {
	for _, d := range u.TrustedDevices {
		if d == deviceID {
			return true
		}
	}
	return false
}
