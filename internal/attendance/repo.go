package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var _ EventStore = (*Repository)(nil)

// Repository persists attendance events in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts a new event and returns it with id and created_at filled in.
func (r *Repository) Append(ctx context.Context, evt Event) (Event, error) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if evt.Status == "" {
		evt.Status = StatusPresent
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_events (id, student_id, occurred_at, status, device_id, fingerprint_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, evt.ID, evt.StudentID, evt.Timestamp, evt.Status, evt.DeviceID, evt.FingerprintID)
	if err := row.Scan(&evt.CreatedAt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// Get returns a single event by id, or (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, occurred_at, status, device_id, fingerprint_id, created_at
		FROM attendance_events WHERE id = $1
	`, id)
	var evt Event
	if err := row.Scan(&evt.ID, &evt.StudentID, &evt.Timestamp, &evt.Status, &evt.DeviceID, &evt.FingerprintID, &evt.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &evt, nil
}

// Query returns events matching the filter, newest first with id as the
// tie-break on equal timestamps.
func (r *Repository) Query(ctx context.Context, f EventFilter) ([]Event, error) {
	query := `SELECT id, student_id, occurred_at, status, device_id, fingerprint_id, created_at FROM attendance_events`
	var (
		args    []any
		clauses []string
	)
	if f.StudentID != "" {
		args = append(args, f.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if f.Window != nil {
		args = append(args, f.Window.Start)
		clauses = append(clauses, fmt.Sprintf("occurred_at >= $%d", len(args)))
		args = append(args, f.Window.End)
		clauses = append(clauses, fmt.Sprintf("occurred_at < $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.StudentID, &evt.Timestamp, &evt.Status, &evt.DeviceID, &evt.FingerprintID, &evt.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, evt)
	}
	return res, rows.Err()
}

// CountCapped counts events scanning at most limit rows.
func (r *Repository) CountCapped(ctx context.Context, limit int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (SELECT 1 FROM attendance_events LIMIT $1) capped
	`, limit).Scan(&n)
	return n, err
}
