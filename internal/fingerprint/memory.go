package fingerprint

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*InMemory)(nil)

// InMemory is a map-backed Store for tests and local development.
type InMemory struct {
	mu        sync.RWMutex
	templates map[int64]Template
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{templates: make(map[int64]Template)}
}

// Set merges over any existing record, keeping created_at and any fields the
// new record leaves blank.
func (m *InMemory) Set(_ context.Context, t Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := m.templates[t.FingerprintID]; ok {
		if t.Template == "" {
			t.Template = existing.Template
		}
		if t.DeviceID == "" {
			t.DeviceID = existing.DeviceID
		}
		t.CreatedAt = existing.CreatedAt
	} else {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	m.templates[t.FingerprintID] = t
	return nil
}

// Get returns (nil, nil) when the id is absent.
func (m *InMemory) Get(_ context.Context, fingerprintID int64) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[fingerprintID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}
