package session

import (
	"context"
	"iter"
	"sync"
)

// MemoryStore is an in-memory Store. It is intended for tests and single-process setups.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Record
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Record),
	}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Record{}, ErrStoreClosed
	}
	rec, ok := m.sessions[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.sessions[rec.Key] = rec.Clone()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrStoreClosed
	}
	if _, ok := m.sessions[key]; !ok {
		return false, nil
	}
	delete(m.sessions, key)
	return true, nil
}

// All iterates over a point-in-time copy of the stored records, so callers may
// delete while iterating.
func (m *MemoryStore) All(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		m.mu.RLock()
		if m.closed {
			m.mu.RUnlock()
			yield(Record{}, ErrStoreClosed)
			return
		}
		recs := make([]Record, 0, len(m.sessions))
		for _, rec := range m.sessions {
			recs = append(recs, rec.Clone())
		}
		m.mu.RUnlock()

		for _, rec := range recs {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close drops all records. Further calls return ErrStoreClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.sessions = nil
	return nil
}
