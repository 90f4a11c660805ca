package client

import (
	"context"
	"fmt"

	"crewtrack.in/crewtrack/client/buffer"
	"crewtrack.in/crewtrack/utils"
)

// SyncReport is what the device UI shows after a sync attempt.
type SyncReport struct {
	NothingToSync bool
	SyncedCount   int
	Details       BatchDetails
}

// Coordinator drains the attendance buffer into the server in one bulk
// request. A device never runs two syncs at once; mutations and syncs do not
// interleave because the pending set is read once at sync start and flags
// are only flipped after the round trip completes.
type Coordinator struct {
	Buffer *buffer.Buffer
	Client *Client
}

func NewCoordinator(buf *buffer.Buffer, cl *Client) *Coordinator {
	return &Coordinator{Buffer: buf, Client: cl}
}

// Sync pushes every pending entry. On transport failure nothing is mutated
// locally — the entries stay pending for the next manual attempt. On success
// the whole batch transitions to synced+locked; the server is the authority
// for those flags, so the client mirrors them rather than deciding.
func (c *Coordinator) Sync(ctx context.Context) (*SyncReport, error) {
	pending, err := c.Buffer.PendingEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect pending entries: %w", err)
	}
	if len(pending) == 0 {
		return &SyncReport{NothingToSync: true}, nil
	}

	payload := utils.Map(pending, entryToSyncEntry)

	result, err := c.Client.Attendance.Sync(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("upload batch: %w", err)
	}

	if err := c.Buffer.MarkSynced(ctx, pending); err != nil {
		return nil, fmt.Errorf("mark synced: %w", err)
	}

	return &SyncReport{
		SyncedCount: result.SyncedCount,
		Details:     result.Details,
	}, nil
}

func entryToSyncEntry(e buffer.Entry) SyncEntry {
	se := SyncEntry{
		EmployeeID:     e.EmployeeID,
		Date:           e.Date,
		Status:         e.Status,
		CheckInTime:    e.CheckInTime,
		PhotoReference: e.PhotoReference,
		Remarks:        e.Remarks,
		OvertimeHours:  e.OvertimeHours,
	}
	if e.Latitude != nil && e.Longitude != nil {
		se.Location = &Location{Lat: *e.Latitude, Lng: *e.Longitude}
	}
	return se
}
