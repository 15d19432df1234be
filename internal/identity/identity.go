// Package identity holds registered people and resolves fingerprint readings
// back to them.
package identity

import (
	"context"
	"errors"
	"time"
)

// Roles assignable to an identity. Only students count toward attendance
// denominators.
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
)

// ErrFingerprintTaken is returned by registration when the fingerprint id is
// already assigned to a different identity.
var ErrFingerprintTaken = errors.New("fingerprint id already assigned")

// Identity is a registered person.
type Identity struct {
	UID           string    `json:"uid"`
	Name          string    `json:"name"`
	FingerprintID int64     `json:"fingerprint_id"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store is the identity collection contract. Single-row lookups return
// (nil, nil) when no record exists; that outcome is ordinary, not an error.
type Store interface {
	// Set upserts by UID, merging over any existing record.
	Set(ctx context.Context, id Identity) error
	Get(ctx context.Context, uid string) (*Identity, error)
	Delete(ctx context.Context, uid string) error
	// FindByFingerprint returns every identity holding the fingerprint id,
	// in stable store order. More than one result means the uniqueness
	// invariant has been violated upstream.
	FindByFingerprint(ctx context.Context, fingerprintID int64) ([]Identity, error)
	ListStudents(ctx context.Context) ([]Identity, error)
	CountStudents(ctx context.Context) (int, error)
	CountStudentsCreatedSince(ctx context.Context, since time.Time) (int, error)
}
