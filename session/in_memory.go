package session

import (
	"context"
	"sync"

	"github.com/ordermesh/ordermesh/core"
)

// InMemoryStore is a volatile SessionStore implementation storing fields in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo runs; it does not satisfy the durability the
// conversation core expects in production.
type InMemoryStore struct {
	mu     sync.RWMutex
	fields map[string]string
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{fields: make(map[string]string)}
}

// Get returns the value for key and whether it exists.
func (s *InMemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.fields[key]
	return val, ok, nil
}

// Set writes key unconditionally.
func (s *InMemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[key] = value
	return nil
}

// SetNX writes key only when absent and reports whether the write happened.
func (s *InMemoryStore) SetNX(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fields[key]; ok {
		return false, nil
	}
	s.fields[key] = value
	return true, nil
}

// Delete removes the given keys. Absent keys are ignored.
func (s *InMemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.fields, key)
	}
	return nil
}

// Len reports the number of stored fields. Intended for tests.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}

var _ core.SessionStore = (*InMemoryStore)(nil)
