// Package attendance records fingerprint check-in events and derives daily
// presence metrics from them. Events are append-only facts; deduplication by
// student happens at read time, never at write time.
package attendance

import (
	"context"
	"time"

	"fingertrack/internal/timewindow"
)

// StatusPresent is the only event status in the current design. The column
// exists so future statuses (late, excused) do not need a migration.
const StatusPresent = "Present"

// Event is one immutable check-in fact: "student X was present at time T".
// FingerprintID is a denormalized copy captured at insert time so history
// stays stable if the identity's fingerprint is later reassigned.
type Event struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
	DeviceID      string    `json:"device_id"`
	FingerprintID int64     `json:"fingerprint_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventFilter narrows a Query. Zero-value fields are ignored except Limit,
// which must be positive; callers clamp it before it reaches the store.
type EventFilter struct {
	StudentID string
	Window    *timewindow.Window
	Limit     int
}

// EventStore is the append-only event log contract. Query returns events
// ordered by timestamp descending with id descending as the tie-break, so
// equal timestamps paginate deterministically.
type EventStore interface {
	Append(ctx context.Context, evt Event) (Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	Query(ctx context.Context, f EventFilter) ([]Event, error)
	// CountCapped counts events, scanning at most limit rows. Bounded cost
	// is preferred over exact totals at large scale.
	CountCapped(ctx context.Context, limit int) (int, error)
}
