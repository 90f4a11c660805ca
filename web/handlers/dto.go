package handlers

import (
	"time"

	"crewtrack.in/crewtrack/core"
	"crewtrack.in/crewtrack/model"
	"crewtrack.in/crewtrack/web/common"
)

type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AttendanceEntryDTO is one entry of the bulk sync payload. employeeId and
// date are deliberately not `binding:"required"`: a malformed entry is
// skipped per-record by the store, not rejected as a whole-batch 400.
type AttendanceEntryDTO struct {
	EmployeeID     string       `json:"employeeId"`
	Date           string       `json:"date"`
	Status         string       `json:"status"`
	CheckInTime    *time.Time   `json:"checkInTime,omitempty"`
	PhotoReference *string      `json:"photoReference,omitempty"`
	Location       *LocationDTO `json:"location,omitempty"`
	Remarks        string       `json:"remarks,omitempty"`
	OvertimeHours  float64      `json:"overtimeHours,omitempty"`
}

func (d AttendanceEntryDTO) ToRecord() model.AttendanceRecord {
	rec := model.AttendanceRecord{
		EmployeeID:     d.EmployeeID,
		Date:           d.Date,
		Status:         model.AttendanceStatus(d.Status),
		CheckInTime:    d.CheckInTime,
		PhotoReference: d.PhotoReference,
		Remarks:        d.Remarks,
		OvertimeHours:  d.OvertimeHours,
	}
	if d.Location != nil {
		lat, lng := d.Location.Lat, d.Location.Lng
		rec.Latitude = &lat
		rec.Longitude = &lng
	}
	return rec
}

type SyncResponseDTO struct {
	Success     bool             `json:"success"`
	SyncedCount int              `json:"syncedCount"`
	Details     core.BatchResult `json:"details"`
}

type ClearPhotoDTO struct {
	EmployeeID string          `json:"employeeId" binding:"required"`
	Date       common.DateOnly `json:"date"`
}

type LoginDTO struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type VerifyOTPDTO struct {
	Identifier string `json:"identifier" binding:"required"`
	OTP        string `json:"otp" binding:"required"`
	DeviceID   string `json:"deviceId" binding:"required"`
}

type SupervisorLoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RevokeTrustDTO struct {
	UserID string `json:"userId" binding:"required"`
}
