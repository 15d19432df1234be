package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var _ Store = (*Repository)(nil)

// Repository persists identities in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Set upserts an identity keyed by uid.
func (r *Repository) Set(ctx context.Context, id Identity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (uid, name, fingerprint_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid) DO UPDATE SET
			name = EXCLUDED.name,
			fingerprint_id = EXCLUDED.fingerprint_id,
			role = EXCLUDED.role
	`, id.UID, id.Name, id.FingerprintID, id.Role, id.CreatedAt)
	return err
}

// Get returns one identity by uid, or (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, uid string) (*Identity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT uid, name, fingerprint_id, role, created_at
		FROM users WHERE uid = $1
	`, uid)
	var id Identity
	if err := row.Scan(&id.UID, &id.Name, &id.FingerprintID, &id.Role, &id.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

// Delete removes an identity. Deleting a missing uid is a no-op.
func (r *Repository) Delete(ctx context.Context, uid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, uid)
	return err
}

// FindByFingerprint returns all holders of a fingerprint id, ordered by
// creation time so degraded first-match-wins resolution stays deterministic.
func (r *Repository) FindByFingerprint(ctx context.Context, fingerprintID int64) ([]Identity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT uid, name, fingerprint_id, role, created_at
		FROM users
		WHERE fingerprint_id = $1
		ORDER BY created_at, uid
	`, fingerprintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Identity
	for rows.Next() {
		var id Identity
		if err := rows.Scan(&id.UID, &id.Name, &id.FingerprintID, &id.Role, &id.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

// ListStudents returns all student identities ordered by uid.
func (r *Repository) ListStudents(ctx context.Context) ([]Identity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT uid, name, fingerprint_id, role, created_at
		FROM users
		WHERE role = $1
		ORDER BY uid
	`, RoleStudent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Identity
	for rows.Next() {
		var id Identity
		if err := rows.Scan(&id.UID, &id.Name, &id.FingerprintID, &id.Role, &id.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

// CountStudents returns the number of registered students.
func (r *Repository) CountStudents(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, RoleStudent).Scan(&n)
	return n, err
}

// CountStudentsCreatedSince returns students registered at or after since.
func (r *Repository) CountStudentsCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND created_at >= $2`,
		RoleStudent, since).Scan(&n)
	return n, err
}
