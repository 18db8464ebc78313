package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process DocumentStore. It backs tests and the
// "memory" runtime backend; nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
	hub  *hub
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]byte),
		hub:  newHub(),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	m.mu.Lock()
	m.docs[key] = cp
	m.mu.Unlock()

	m.hub.broadcast(key)
	return nil
}

func (m *MemoryStore) Subscribe(fn func(key string)) func() {
	return m.hub.subscribe(fn)
}

func (m *MemoryStore) Close() error { return nil }
