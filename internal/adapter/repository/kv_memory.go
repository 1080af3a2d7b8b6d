package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/repository"
)

// MemoryKeyValueStore keeps values in process memory.
type MemoryKeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKeyValueStore returns an empty in-memory store.
func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{values: make(map[string]string)}
}

var (
	_ repository.KeyValueStore = (*MemoryKeyValueStore)(nil)
	_ repository.KeyLister     = (*MemoryKeyValueStore)(nil)
)

func (s *MemoryKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", entity.ErrKeyNotFound
	}
	return value, nil
}

func (s *MemoryKeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryKeyValueStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryKeyValueStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
