package store

import (
	"context"
	"sync"

	"github.com/kbukum/tubescript/errors"
)

// Memory is a process-local Repository.
type Memory[T Record[T]] struct {
	mu       sync.RWMutex
	resource string
	items    map[string]T
	order    []string
}

// NewMemory creates an empty in-memory repository. resource names the
// record kind in NotFound errors.
func NewMemory[T Record[T]](resource string) *Memory[T] {
	return &Memory[T]{resource: resource, items: make(map[string]T)}
}

// Get returns a copy of the stored record.
func (m *Memory[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.items[id]
	if !ok {
		var zero T
		return zero, errors.NotFound(m.resource, id)
	}
	return rec.Clone(), nil
}

// Put stores a copy of record, replacing any previous snapshot.
func (m *Memory[T]) Put(_ context.Context, record T) error {
	id := record.RecordID()
	snapshot := record.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		m.order = append(m.order, id)
	}
	m.items[id] = snapshot
	return nil
}

// List returns copies of all records in insertion order.
func (m *Memory[T]) List(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id].Clone())
	}
	return out, nil
}

// Len returns the number of stored records.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
