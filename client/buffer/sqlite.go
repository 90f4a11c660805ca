package buffer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// modernc registers itself with database/sql under the name "sqlite".
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS local_attendance (
	employee_id     TEXT NOT NULL,
	date            TEXT NOT NULL,
	status          TEXT NOT NULL,
	check_in_time   TEXT,
	photo_reference TEXT,
	latitude        REAL,
	longitude       REAL,
	remarks         TEXT NOT NULL DEFAULT '',
	overtime_hours  REAL NOT NULL DEFAULT 0,
	is_synced       INTEGER NOT NULL DEFAULT 0,
	is_locked       INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (employee_id, date)
)`

// SQLiteStorage is the on-device durable buffer store. Pure-Go sqlite so the
// client binary cross-compiles for handheld targets without CGo.
type SQLiteStorage struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the buffer database at path.
func OpenSQLite(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open buffer db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("migrate buffer db: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id, date, status, check_in_time, photo_reference,
		        latitude, longitude, remarks, overtime_hours, is_synced, is_locked
		 FROM local_attendance`)
	if err != nil {
		return nil, fmt.Errorf("load buffer: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var checkIn sql.NullString
		var photo sql.NullString
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&e.EmployeeID, &e.Date, &e.Status, &checkIn, &photo,
			&lat, &lng, &e.Remarks, &e.OvertimeHours, &e.IsSynced, &e.IsLocked); err != nil {
			return nil, fmt.Errorf("scan buffer entry: %w", err)
		}
		if checkIn.Valid {
			t, err := time.Parse(time.RFC3339Nano, checkIn.String)
			if err != nil {
				return nil, fmt.Errorf("parse check-in time %q: %w", checkIn.String, err)
			}
			e.CheckInTime = &t
		}
		if photo.Valid {
			p := photo.String
			e.PhotoReference = &p
		}
		if lat.Valid {
			v := lat.Float64
			e.Latitude = &v
		}
		if lng.Valid {
			v := lng.Float64
			e.Longitude = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStorage) Save(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM local_attendance`); err != nil {
		return fmt.Errorf("clear buffer: %w", err)
	}

	for _, e := range entries {
		// the TEXT column round-trips as a string, so the time is formatted
		// here and parsed back in Load
		var checkIn *string
		if e.CheckInTime != nil {
			s := e.CheckInTime.Format(time.RFC3339Nano)
			checkIn = &s
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO local_attendance
			 (employee_id, date, status, check_in_time, photo_reference,
			  latitude, longitude, remarks, overtime_hours, is_synced, is_locked)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.EmployeeID, e.Date, e.Status, checkIn, e.PhotoReference,
			e.Latitude, e.Longitude, e.Remarks, e.OvertimeHours, e.IsSynced, e.IsLocked)
		if err != nil {
			return fmt.Errorf("save buffer entry %s: %w", e.Key(), err)
		}
	}

	return tx.Commit()
}
