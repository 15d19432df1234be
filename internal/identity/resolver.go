package identity

import "context"

// Resolver maps sensor readings and stored references to identities.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveByFingerprint returns the identity holding the fingerprint id, or
// (nil, nil) when the reading is unrecognized. If duplicate holders exist in
// stored data the first match wins; registration rejects new collisions, so
// this path only triggers on pre-existing bad data.
func (r *Resolver) ResolveByFingerprint(ctx context.Context, fingerprintID int64) (*Identity, error) {
	matches, err := r.store.FindByFingerprint(ctx, fingerprintID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// DisplayName resolves uid to the identity's current name, degrading to
// "Unknown" when the identity is missing or the lookup fails. Bulk listings
// must not abort on a single dangling reference.
func (r *Resolver) DisplayName(ctx context.Context, uid string) string {
	id, err := r.store.Get(ctx, uid)
	if err != nil || id == nil || id.Name == "" {
		return "Unknown"
	}
	return id.Name
}
