package device

import (
	"context"
	"errors"
	"sync"
	"time"
)

var _ Store = (*InMemory)(nil)

// InMemory is a map-backed Store for tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	devices map[string]Device
	tokens  map[string]refreshToken
}

type refreshToken struct {
	deviceID  string
	expiresAt time.Time
	revoked   bool
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		devices: make(map[string]Device),
		tokens:  make(map[string]refreshToken),
	}
}

// Upsert ensures a device exists.
func (m *InMemory) Upsert(_ context.Context, deviceID string) error {
	if deviceID == "" {
		return errors.New("device id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[deviceID]; !ok {
		m.devices[deviceID] = Device{DeviceID: deviceID, CreatedAt: time.Now().UTC()}
	}
	return nil
}

// Get returns (nil, nil) when the device is absent.
func (m *InMemory) Get(_ context.Context, deviceID string) (*Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[deviceID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// TouchLastSeen records activity, creating the device row if needed. Only
// moves last_seen_at forward.
func (m *InMemory) TouchLastSeen(_ context.Context, deviceID string, seen time.Time) error {
	if deviceID == "" {
		return errors.New("device id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[deviceID]
	if !ok {
		d = Device{DeviceID: deviceID, CreatedAt: time.Now().UTC()}
	}
	if d.LastSeenAt == nil || seen.After(*d.LastSeenAt) {
		d.LastSeenAt = &seen
	}
	m.devices[deviceID] = d
	return nil
}

// SaveRefreshToken stores a refresh token.
func (m *InMemory) SaveRefreshToken(_ context.Context, deviceID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = refreshToken{deviceID: deviceID, expiresAt: expiresAt}
	return nil
}

// RevokeRefreshToken marks a token revoked.
func (m *InMemory) RevokeRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[token]; ok {
		t.revoked = true
		m.tokens[token] = t
	}
	return nil
}
