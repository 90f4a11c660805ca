package core

import (
	"context"
	"fmt"
	"log"

	"crewtrack.in/crewtrack/model"
)

// AttendanceFilter narrows FindAll. Zero values mean "no filter".
type AttendanceFilter struct {
	Date       string
	EmployeeID string
	Limit      int
}

// AttendanceRepository is the storage port for attendance records. The
// production implementation is GORM/MySQL; tests substitute the in-memory one.
type AttendanceRepository interface {
	// Find returns the record for (employeeID, date), or nil when absent.
	Find(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error)
	// Insert creates the record, reporting false without error when a
	// concurrent insert already owns the (employeeID, date) key.
	Insert(ctx context.Context, rec *model.AttendanceRecord) (bool, error)
	Update(ctx context.Context, rec *model.AttendanceRecord) error
	List(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceRecord, error)
	// ClearPhoto nulls the photo reference in place; no-op when absent.
	ClearPhoto(ctx context.Context, employeeID, date string) error
}

type BatchResult struct {
	Matched  int `json:"matched"`
	Modified int `json:"modified"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

// AttendanceStore applies sync batches durably and idempotently.
type AttendanceStore struct {
	repo AttendanceRepository
}

func NewAttendanceStore(repo AttendanceRepository) *AttendanceStore {
	return &AttendanceStore{repo: repo}
}

// ApplyBatch upserts every record keyed on (employeeId, date), forcing
// isSynced and isLocked true regardless of what the client sent. Locked
// records are never modified; re-application of the same batch is a no-op in
// effect. Concurrent writers to the same key resolve last-write-wins — there
// is no merge and no revision check.
//
// A record missing its identity key is skipped and counted, not an error:
// one malformed entry must not cost the client the rest of the batch.
func (s *AttendanceStore) ApplyBatch(ctx context.Context, records []model.AttendanceRecord) (BatchResult, error) {
	var res BatchResult

	for i := range records {
		rec := records[i]
		if rec.EmployeeID == "" || rec.Date == "" {
			res.Skipped++
			log.Printf("attendance: skipping batch item %d: missing employeeId or date", i)
			continue
		}

		existing, err := s.repo.Find(ctx, rec.EmployeeID, rec.Date)
		if err != nil {
			return res, fmt.Errorf("find attendance %s/%s: %w", rec.EmployeeID, rec.Date, err)
		}

		if existing == nil {
			rec.ID = 0
			rec.IsSynced = true
			rec.IsLocked = true
			created, err := s.repo.Insert(ctx, &rec)
			if err != nil {
				return res, fmt.Errorf("insert attendance %s/%s: %w", rec.EmployeeID, rec.Date, err)
			}
			if created {
				res.Upserted++
				continue
			}
			// lost the insert race; fall through to the update path
			existing, err = s.repo.Find(ctx, rec.EmployeeID, rec.Date)
			if err != nil || existing == nil {
				return res, fmt.Errorf("re-find attendance %s/%s after conflict: %w", rec.EmployeeID, rec.Date, err)
			}
		}

		res.Matched++
		if existing.IsLocked {
			continue
		}

		existing.Status = rec.Status
		existing.CheckInTime = rec.CheckInTime
		existing.PhotoReference = rec.PhotoReference
		existing.Latitude = rec.Latitude
		existing.Longitude = rec.Longitude
		existing.Remarks = rec.Remarks
		existing.OvertimeHours = rec.OvertimeHours
		existing.IsSynced = true
		existing.IsLocked = true

		if err := s.repo.Update(ctx, existing); err != nil {
			return res, fmt.Errorf("update attendance %s/%s: %w", rec.EmployeeID, rec.Date, err)
		}
		res.Modified++
	}

	return res, nil
}

// FindAll returns records for dashboards/reconciliation. No pagination
// contract at this layer beyond an optional limit.
func (s *AttendanceStore) FindAll(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceRecord, error) {
	return s.repo.List(ctx, filter)
}

// ClearPhoto is the only mutation permitted on a locked record. It nulls the
// photo reference without touching the lock, and is a no-op when no record
// matches.
func (s *AttendanceStore) ClearPhoto(ctx context.Context, employeeID, date string) error {
	return s.repo.ClearPhoto(ctx, employeeID, date)
}
