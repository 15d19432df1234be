package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ EventStore = (*InMemoryEvents)(nil)

// InMemoryEvents is a slice-backed EventStore for tests and local development.
type InMemoryEvents struct {
	mu     sync.RWMutex
	events []Event
}

// NewInMemoryEvents creates an empty in-memory event log.
func NewInMemoryEvents() *InMemoryEvents {
	return &InMemoryEvents{}
}

// Append stores the event, assigning id and created_at like the Postgres repo.
func (m *InMemoryEvents) Append(_ context.Context, evt Event) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if evt.Status == "" {
		evt.Status = StatusPresent
	}
	evt.CreatedAt = time.Now().UTC()
	m.events = append(m.events, evt)
	return evt, nil
}

// Get returns (nil, nil) when the id is absent.
func (m *InMemoryEvents) Get(_ context.Context, id string) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.events {
		if m.events[i].ID == id {
			evt := m.events[i]
			return &evt, nil
		}
	}
	return nil, nil
}

// Query filters and orders like the Postgres repo: timestamp descending,
// id descending on ties.
func (m *InMemoryEvents) Query(_ context.Context, f EventFilter) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []Event
	for _, evt := range m.events {
		if f.StudentID != "" && evt.StudentID != f.StudentID {
			continue
		}
		if f.Window != nil && !f.Window.Contains(evt.Timestamp) {
			continue
		}
		res = append(res, evt)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Timestamp.Equal(res[j].Timestamp) {
			return res[i].Timestamp.After(res[j].Timestamp)
		}
		return res[i].ID > res[j].ID
	})
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, nil
}

// CountCapped counts events up to limit.
func (m *InMemoryEvents) CountCapped(_ context.Context, limit int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.events) > limit {
		return limit, nil
	}
	return len(m.events), nil
}
