package repository

import (
	"context"
	"sync"

	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
)

// MemoryKVRepository keeps entries in process memory. Values are copied on the
// way in and out.
type MemoryKVRepository struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryKVRepository creates an empty in-memory repository.
func NewMemoryKVRepository() *MemoryKVRepository {
	return &MemoryKVRepository{entries: make(map[string][]byte)}
}

func (m *MemoryKVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryKVRepository) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKVRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
