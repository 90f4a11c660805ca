package client

import (
	"context"
	"encoding/json"
	"time"

	"crewtrack.in/crewtrack/model"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SyncEntry is one attendance decision as it travels on the wire.
type SyncEntry struct {
	EmployeeID     string     `json:"employeeId"`
	Date           string     `json:"date"`
	Status         string     `json:"status"`
	CheckInTime    *time.Time `json:"checkInTime,omitempty"`
	PhotoReference *string    `json:"photoReference,omitempty"`
	Location       *Location  `json:"location,omitempty"`
	Remarks        string     `json:"remarks,omitempty"`
	OvertimeHours  float64    `json:"overtimeHours,omitempty"`
}

type BatchDetails struct {
	Matched  int `json:"matched"`
	Modified int `json:"modified"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

type SyncResult struct {
	Success     bool         `json:"success"`
	SyncedCount int          `json:"syncedCount"`
	Details     BatchDetails `json:"details"`
}

type AttendanceEndpoint struct {
	transport *Transport
}

// Sync uploads the batch in one request. Safe to retry: the server upserts
// by (employeeId, date).
func (ep *AttendanceEndpoint) Sync(ctx context.Context, entries []SyncEntry) (*SyncResult, error) {
	resp, err := ep.transport.Post(ctx, "/api/v1/attendance/sync", entries, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data SyncResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Data, &envelope); err != nil {
		return nil, err
	}

	return &envelope.Data, nil
}

// List fetches server records, optionally filtered by date and employee.
func (ep *AttendanceEndpoint) List(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error) {
	query := map[string]string{}
	if date != "" {
		query["date"] = date
	}
	if employeeID != "" {
		query["employeeId"] = employeeID
	}

	resp, err := ep.transport.Get(ctx, "/api/v1/attendance", query)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data struct {
			Records []model.AttendanceRecord `json:"records"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Data, &envelope); err != nil {
		return nil, err
	}

	return envelope.Data.Records, nil
}

// ClearPhoto nulls the photo reference on the matching server record.
func (ep *AttendanceEndpoint) ClearPhoto(ctx context.Context, employeeID, date string) error {
	_, err := ep.transport.Post(ctx, "/api/v1/attendance/photo/clear", map[string]string{
		"employeeId": employeeID,
		"date":       date,
	}, nil)
	return err
}
