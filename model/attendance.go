package model

import "time"

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "P"
	StatusAbsent  AttendanceStatus = "A"
	StatusHalfDay AttendanceStatus = "H"
	StatusLeave   AttendanceStatus = "L"
)

// AttendanceRecord is the authoritative server-side record, one per
// (employee, calendar day). Date is a yyyy-MM-dd string, not a timestamp.
type AttendanceRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EmployeeID string `gorm:"column:employee_id;size:64;not null;uniqueIndex:idx_employee_date" json:"employeeId"`
	Date       string `gorm:"column:date;size:10;not null;uniqueIndex:idx_employee_date" json:"date"`

	Status         AttendanceStatus `gorm:"column:status;size:8;not null" json:"status"`
	CheckInTime    *time.Time       `gorm:"column:check_in_time" json:"checkInTime,omitempty"`
	PhotoReference *string          `gorm:"column:photo_reference;size:512" json:"photoReference,omitempty"`
	Latitude       *float64         `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude      *float64         `gorm:"column:longitude" json:"longitude,omitempty"`
	Remarks        string           `gorm:"column:remarks;size:512" json:"remarks,omitempty"`
	OvertimeHours  float64          `gorm:"column:overtime_hours;type:decimal(10,2)" json:"overtimeHours"`

	// flag discipline: the server forces both true on every applied record,
	// whatever the client sent.
	IsSynced bool `gorm:"column:is_synced;not null" json:"isSynced"`
	IsLocked bool `gorm:"column:is_locked;not null" json:"isLocked"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
