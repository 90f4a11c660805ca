// Package buffer holds the supervisor's working set of attendance decisions
// until they reach the server. The buffer is owned by exactly one device and
// persists across app restarts through its Storage port.
package buffer

import (
	"context"
	"time"
)

// Entry mirrors a subset of the server record plus the local sync flags.
type Entry struct {
	EmployeeID     string     `json:"employeeId"`
	Date           string     `json:"date"`
	Status         string     `json:"status"`
	CheckInTime    *time.Time `json:"checkInTime,omitempty"`
	PhotoReference *string    `json:"photoReference,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	Remarks        string     `json:"remarks,omitempty"`
	OvertimeHours  float64    `json:"overtimeHours,omitempty"`
	IsSynced       bool       `json:"isSynced"`
	IsLocked       bool       `json:"isLocked"`
}

func (e Entry) Key() string {
	return e.EmployeeID + "|" + e.Date
}

// Storage is the durable backing for the buffer. Save receives the complete
// entry set; implementations replace their contents wholesale.
type Storage interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// Buffer is write-through: every read loads from storage and every mutation
// saves back before returning.
type Buffer struct {
	storage Storage
}

func New(storage Storage) *Buffer {
	return &Buffer{storage: storage}
}

// RecordPresence constructs or overwrites the entry for (employeeID, date)
// with a Present mark. Mutating a locked entry is a silent no-op: the tamper
// attempt never reaches the server.
func (b *Buffer) RecordPresence(ctx context.Context, employeeID, date string, photo *string, lat, lng float64, checkInTime time.Time) error {
	entry := Entry{
		EmployeeID:     employeeID,
		Date:           date,
		Status:         "P",
		CheckInTime:    &checkInTime,
		PhotoReference: photo,
		Latitude:       &lat,
		Longitude:      &lng,
	}
	return b.put(ctx, entry)
}

// RecordStatus sets a photo-less status (Absent, HalfDay, ...) for the key.
// Same lock guard as RecordPresence.
func (b *Buffer) RecordStatus(ctx context.Context, employeeID, date, status string) error {
	entry := Entry{
		EmployeeID: employeeID,
		Date:       date,
		Status:     status,
	}
	return b.put(ctx, entry)
}

func (b *Buffer) put(ctx context.Context, entry Entry) error {
	entries, err := b.storage.Load(ctx)
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].Key() != entry.Key() {
			continue
		}
		if entries[i].IsLocked {
			return nil
		}
		entries[i] = entry
		return b.storage.Save(ctx, entries)
	}

	entries = append(entries, entry)
	return b.storage.Save(ctx, entries)
}

// PendingEntries returns every entry still waiting for a server ack.
func (b *Buffer) PendingEntries(ctx context.Context) ([]Entry, error) {
	entries, err := b.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Entry
	for _, e := range entries {
		if !e.IsSynced {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

// MarkSynced flips the given entries to synced+locked after a confirmed
// server acknowledgment. This is the only transition out of pending.
func (b *Buffer) MarkSynced(ctx context.Context, synced []Entry) error {
	entries, err := b.storage.Load(ctx)
	if err != nil {
		return err
	}

	keys := make(map[string]bool, len(synced))
	for _, e := range synced {
		keys[e.Key()] = true
	}

	for i := range entries {
		if keys[entries[i].Key()] {
			entries[i].IsSynced = true
			entries[i].IsLocked = true
		}
	}

	return b.storage.Save(ctx, entries)
}

// Entries returns the full working set, pending and locked alike.
func (b *Buffer) Entries(ctx context.Context) ([]Entry, error) {
	return b.storage.Load(ctx)
}
