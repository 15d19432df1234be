// Package device tracks the physical sensor devices posting check-ins.
package device

import (
	"context"
	"time"
)

// Device is a registered sensor. LastSeenAt is maintained asynchronously by
// the worker, off the check-in request path.
type Device struct {
	DeviceID   string     `json:"device_id"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Store is the device collection contract.
type Store interface {
	// Upsert ensures a device record exists. Re-registering is a no-op.
	Upsert(ctx context.Context, deviceID string) error
	Get(ctx context.Context, deviceID string) (*Device, error)
	// TouchLastSeen records device activity, creating the row if the device
	// never registered explicitly.
	TouchLastSeen(ctx context.Context, deviceID string, seen time.Time) error
	// SaveRefreshToken stores a refresh token for rotation checks.
	SaveRefreshToken(ctx context.Context, deviceID, token string, expiresAt time.Time) error
	// RevokeRefreshToken marks a token revoked.
	RevokeRefreshToken(ctx context.Context, token string) error
}
