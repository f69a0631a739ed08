package cache

import (
	"context"
	"sync"
)

// DefaultMemoryEntries bounds a Memory cache created with a non-positive size.
const DefaultMemoryEntries = 256

// Memory is a bounded map that evicts the oldest inserted seed first.
type Memory struct {
	mu      sync.Mutex
	limit   int
	entries map[string][]byte
	// order is a ring of seeds in insertion order; once full, head is the oldest
	order []string
	head  int
}

// NewMemory returns an empty cache holding at most limit seeds.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultMemoryEntries
	}
	return &Memory{limit: limit, entries: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, seed string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[seed]
	if !ok {
		return nil, ErrMiss
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Set(_ context.Context, seed string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[seed]; !ok {
		if len(m.order) < m.limit {
			m.order = append(m.order, seed)
		} else {
			delete(m.entries, m.order[m.head])
			m.order[m.head] = seed
			m.head = (m.head + 1) % m.limit
		}
	}
	m.entries[seed] = append([]byte(nil), data...)
	return nil
}

// Len returns the number of cached seeds.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	return nil
}
