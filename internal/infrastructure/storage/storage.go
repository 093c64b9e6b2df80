package storage

import (
	"context"
	"sync"
)

// DefaultKey is the application-namespaced key the cart is persisted under
const DefaultKey = "klassico_cart"

// Storage is durable key-scoped text storage
type Storage interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps values in process memory. Nothing survives a restart.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
