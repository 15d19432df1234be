package identity

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ Store = (*InMemory)(nil)

// InMemory is a map-backed Store for tests and local development.
type InMemory struct {
	mu  sync.RWMutex
	ids map[string]Identity
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{ids: make(map[string]Identity)}
}

// Set upserts by uid.
func (m *InMemory) Set(_ context.Context, id Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id.UID] = id
	return nil
}

// Get returns (nil, nil) when the uid is absent.
func (m *InMemory) Get(_ context.Context, uid string) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.ids[uid]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

// Delete removes an identity; deleting a missing uid is a no-op.
func (m *InMemory) Delete(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, uid)
	return nil
}

// FindByFingerprint returns all holders ordered by creation time then uid,
// matching the Postgres repo's deterministic order.
func (m *InMemory) FindByFingerprint(_ context.Context, fingerprintID int64) ([]Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []Identity
	for _, id := range m.ids {
		if id.FingerprintID == fingerprintID {
			res = append(res, id)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].UID < res[j].UID
	})
	return res, nil
}

// ListStudents returns all students ordered by uid.
func (m *InMemory) ListStudents(_ context.Context) ([]Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []Identity
	for _, id := range m.ids {
		if id.Role == RoleStudent {
			res = append(res, id)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UID < res[j].UID })
	return res, nil
}

// CountStudents returns the number of student identities.
func (m *InMemory) CountStudents(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, id := range m.ids {
		if id.Role == RoleStudent {
			n++
		}
	}
	return n, nil
}

// CountStudentsCreatedSince counts students registered at or after since.
func (m *InMemory) CountStudentsCreatedSince(_ context.Context, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, id := range m.ids {
		if id.Role == RoleStudent && !id.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
