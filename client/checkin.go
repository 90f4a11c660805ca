package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewtrack.in/crewtrack/client/buffer"
	"crewtrack.in/crewtrack/geo"
	"crewtrack.in/crewtrack/model"
	"crewtrack.in/crewtrack/utils"
)

var ErrOutOfRange = errors.New("device is outside the site geofence")

// CheckIn gates Present marks on the site geofence. Absent/leave marks skip
// it entirely: only a physical check-in claims the device stood on site.
type CheckIn struct {
	Site   model.Site
	Buffer *buffer.Buffer
}

func NewCheckIn(site model.Site, buf *buffer.Buffer) *CheckIn {
	return &CheckIn{Site: site, Buffer: buf}
}

// MarkPresent verifies the device position against the site geofence and, in
// range, records a Present entry with the position and capture time attached.
// Out of range nothing is written and the caller gets the measured distance.
func (c *CheckIn) MarkPresent(ctx context.Context, employeeID string, lat, lng float64, photo *string, at time.Time) (geo.RangeStatus, error) {
	status := geo.CheckRange(lat, lng, c.Site.Latitude, c.Site.Longitude, c.Site.GeofenceRadius)
	if !status.InRange {
		return status, fmt.Errorf("%w: %.0fm from %s (limit %.0fm)",
			ErrOutOfRange, status.DistanceMeters, c.Site.Name, c.Site.GeofenceRadius)
	}

	date := at.Format(utils.DateLayout)
	if err := c.Buffer.RecordPresence(ctx, employeeID, date, photo, lat, lng, at); err != nil {
		return status, err
	}
	return status, nil
}

// MarkStatus records a photo-less status (Absent, HalfDay, Leave) for the
// given day. No geofence check: these are clerical marks, not presence claims.
func (c *CheckIn) MarkStatus(ctx context.Context, employeeID string, day time.Time, status model.AttendanceStatus) error {
	return c.Buffer.RecordStatus(ctx, employeeID, day.Format(utils.DateLayout), string(status))
}
