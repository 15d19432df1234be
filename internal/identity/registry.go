package identity

import (
	"context"
	"errors"
	"time"
)

// Registry manages identity records on behalf of the registration endpoints.
type Registry struct {
	store Store
}

// NewRegistry creates a registry over the given store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Register validates and upserts an identity. Re-registering the same uid is
// an update; assigning a fingerprint id already held by a different uid is
// rejected with ErrFingerprintTaken.
func (g *Registry) Register(ctx context.Context, uid, name string, fingerprintID int64, role string) (Identity, error) {
	if uid == "" {
		return Identity{}, errors.New("uid required")
	}
	if name == "" {
		return Identity{}, errors.New("name required")
	}
	if fingerprintID < 0 {
		return Identity{}, errors.New("fingerprint_id must be non-negative")
	}
	if role == "" {
		role = RoleStudent
	}

	holders, err := g.store.FindByFingerprint(ctx, fingerprintID)
	if err != nil {
		return Identity{}, err
	}
	for _, h := range holders {
		if h.UID != uid {
			return Identity{}, ErrFingerprintTaken
		}
	}

	id := Identity{
		UID:           uid,
		Name:          name,
		FingerprintID: fingerprintID,
		Role:          role,
		CreatedAt:     time.Now().UTC(),
	}
	if existing, err := g.store.Get(ctx, uid); err == nil && existing != nil {
		id.CreatedAt = existing.CreatedAt
	}
	if err := g.store.Set(ctx, id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Students lists all registered students.
func (g *Registry) Students(ctx context.Context) ([]Identity, error) {
	return g.store.ListStudents(ctx)
}

// Student returns one student by uid, or (nil, nil) when absent.
func (g *Registry) Student(ctx context.Context, uid string) (*Identity, error) {
	return g.store.Get(ctx, uid)
}

// Remove deletes an identity. Attendance events referencing it remain; reads
// degrade their display name to "Unknown".
func (g *Registry) Remove(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("uid required")
	}
	return g.store.Delete(ctx, uid)
}
