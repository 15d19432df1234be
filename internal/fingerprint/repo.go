package fingerprint

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var _ Store = (*Repository)(nil)

// Repository persists fingerprint templates in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Set upserts a template keyed by fingerprint id, preserving created_at on
// re-enrollment.
func (r *Repository) Set(ctx context.Context, t Template) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fingerprints (fingerprint_id, template, device_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (fingerprint_id) DO UPDATE SET
			template = COALESCE(NULLIF(EXCLUDED.template, ''), fingerprints.template),
			device_id = COALESCE(NULLIF(EXCLUDED.device_id, ''), fingerprints.device_id),
			updated_at = EXCLUDED.updated_at
	`, t.FingerprintID, t.Template, t.DeviceID, now)
	return err
}

// Get returns one template, or (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, fingerprintID int64) (*Template, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT fingerprint_id, COALESCE(template, ''), COALESCE(device_id, ''), created_at, updated_at
		FROM fingerprints WHERE fingerprint_id = $1
	`, fingerprintID)
	var t Template
	if err := row.Scan(&t.FingerprintID, &t.Template, &t.DeviceID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
