package device

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var _ Store = (*Repository)(nil)

// Repository persists devices and refresh tokens in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert ensures a device record exists.
func (r *Repository) Upsert(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return errors.New("device id required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (device_id)
		VALUES ($1)
		ON CONFLICT (device_id) DO NOTHING
	`, deviceID)
	return err
}

// Get returns one device, or (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, deviceID string) (*Device, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT device_id, last_seen_at, created_at
		FROM devices WHERE device_id = $1
	`, deviceID)
	var d Device
	if err := row.Scan(&d.DeviceID, &d.LastSeenAt, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// TouchLastSeen records activity, creating the device row if needed.
func (r *Repository) TouchLastSeen(ctx context.Context, deviceID string, seen time.Time) error {
	if deviceID == "" {
		return errors.New("device id required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (device_id, last_seen_at)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE SET
			last_seen_at = GREATEST(COALESCE(devices.last_seen_at, EXCLUDED.last_seen_at), EXCLUDED.last_seen_at)
	`, deviceID, seen)
	return err
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, deviceID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (device_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, deviceID, token, expiresAt)
	return err
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
