package kv

import (
	"context"
	"sync"

	docsysRepo "storm/internal/domain/repositories/docsystem"
)

// MemoryStore keeps values in process memory. It backs tests and the
// "memory" storage backend; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ docsysRepo.KVStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
