package store

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and as a scratch
// backend when no Redis is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string

	// FailWrites makes every Set return FailErr, for exercising the
	// save-failure path in tests.
	FailWrites bool
	FailErr    error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if s.FailWrites {
		if s.FailErr != nil {
			return s.FailErr
		}
		return errors.New("write failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }
