package model

import "time"

const DefaultGeofenceRadius = 200.0

// Site carries the geofence inputs and the site-bound supervisor credential.
// The password is compared normalized (lower-cased, whitespace stripped), not
// hashed: it is a low-assurance credential scoped to one site's sync traffic.
type Site struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:name;size:128;not null" json:"name"`

	Username string `gorm:"column:username;size:64;not null;uniqueIndex" json:"username"`
	Password string `gorm:"column:password;size:128;not null" json:"-"`

	Latitude       float64 `gorm:"column:latitude;not null" json:"latitude"`
	Longitude      float64 `gorm:"column:longitude;not null" json:"longitude"`
	GeofenceRadius float64 `gorm:"column:geofence_radius;not null;default:200" json:"geofenceRadius"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Site) TableName() string {
	return "sites"
}

// Employee is read-only roster data for this subsystem.
type Employee struct {
	ID     string `gorm:"primaryKey;size:64" json:"id"`
	Name   string `gorm:"column:name;size:128;not null" json:"name"`
	SiteID uint   `gorm:"column:site_id;index;not null" json:"siteId"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
}

func (Employee) TableName() string {
	return "employees"
}
