package persistence

import (
	"sync"

	"github.com/suderio/rolldice/internal/env"
)

// MemoryStore keeps the journal in memory, for sessions that should not
// outlive the process.
type MemoryStore struct {
	mu     sync.Mutex
	events []env.Event
}

// NewMemoryStore returns an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(evt env.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *MemoryStore) Load() ([]env.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]env.Event(nil), m.events...), nil
}

func (m *MemoryStore) Compact(events []env.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append([]env.Event(nil), events...)
	return nil
}

func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *MemoryStore) Close() error { return nil }
