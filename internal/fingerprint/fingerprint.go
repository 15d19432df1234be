// Package fingerprint stores enrolled sensor templates keyed by fingerprint
// id. Matching happens on the sensor; this is storage only.
package fingerprint

import (
	"context"
	"time"
)

// Template is an enrolled fingerprint record. The template payload is opaque
// to this system.
type Template struct {
	FingerprintID int64     `json:"fingerprint_id"`
	Template      string    `json:"template,omitempty"`
	DeviceID      string    `json:"device_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store is the fingerprint collection contract. Set is a merge upsert:
// re-enrolling the same id overwrites the template but keeps created_at.
type Store interface {
	Set(ctx context.Context, t Template) error
	Get(ctx context.Context, fingerprintID int64) (*Template, error)
}
