package mocks

import (
	"context"
	"sync"
)

// MockStorage is a mock implementation of storage.Storage for testing
type MockStorage struct {
	mu     sync.RWMutex
	values map[string]string

	// For tracking calls in tests
	GetCalls    []string
	SetCalls    []SetCall
	DeleteCalls []string
	GetErr      error
	SetErr      error
	DeleteErr   error
}

// SetCall records parameters passed to Set
type SetCall struct {
	Key   string
	Value string
}

// NewMockStorage creates a new MockStorage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		values:   make(map[string]string),
		GetCalls:    make([]string, 0),
		SetCalls:    make([]SetCall, 0),
		DeleteCalls: make([]string, 0),
	}
}

func (m *MockStorage) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MockStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value})
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, key)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.values, key)
	return nil
}

// SetValue seeds a stored value directly for testing
func (m *MockStorage) SetValue(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Value returns the stored value for key
func (m *MockStorage) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// LastSet returns the most recent Set call, if any
func (m *MockStorage) LastSet() (SetCall, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.SetCalls) == 0 {
		return SetCall{}, false
	}
	return m.SetCalls[len(m.SetCalls)-1], true
}
