package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockRepository implements Repository in memory for tests and the "memory" backend
type MockRepository struct {
	entries map[string]*Entry
	mu      sync.RWMutex

	// FailWith, when set, is returned by every Set call
	FailWith error
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		entries: make(map[string]*Entry),
	}
}

// Initialize performs any necessary setup
func (m *MockRepository) Initialize(ctx context.Context) error {
	return nil
}

// Cleanup drops every entry
func (m *MockRepository) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*Entry)
	return nil
}

// Get retrieves a copy of the value stored under key
func (m *MockRepository) Get(ctx context.Context, key string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return copyEntry(entry), nil
}

// Set stores a copy of value under key
func (m *MockRepository) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	if key == "" {
		return ErrInvalidInput
	}
	m.entries[key] = copyEntry(&Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()})
	return nil
}

// Remove deletes key
func (m *MockRepository) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// List returns entries whose key starts with prefix, ordered by key
func (m *MockRepository) List(ctx context.Context, prefix string) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Entry
	for key, entry := range m.entries {
		if strings.HasPrefix(key, prefix) {
			result = append(result, copyEntry(entry))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result, nil
}

func copyEntry(e *Entry) *Entry {
	value := make([]byte, len(e.Value))
	copy(value, e.Value)
	return &Entry{Key: e.Key, Value: value, UpdatedAt: e.UpdatedAt}
}
