package repository

import (
	"context"
	"errors"
	"time"
)

// Entry is one stored value
type Entry struct {
	Key       string    // Storage key
	Value     []byte    // Opaque value, JSON in practice
	UpdatedAt time.Time // Last write time
}

// Repository defines the interface for data access operations.
// It is a plain key-value store: callers own the encoding of values.
type Repository interface {
	// Initialize performs any necessary setup for the repository.
	// This may include establishing database connections or running
	// migrations. Returns an error if initialization fails.
	Initialize(ctx context.Context) error

	// Cleanup releases any resources held by the repository.
	Cleanup(ctx context.Context) error

	// Get retrieves the value stored under key.
	// Returns ErrKeyNotFound if nothing is stored there.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// List returns every entry whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]*Entry, error)
}

// Common errors
var (
	// ErrKeyNotFound is returned when a requested key does not exist
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidInput is returned when the input parameters are invalid
	ErrInvalidInput = errors.New("invalid input")
)

// GetOrDefault returns the stored value, or def when the key is absent
func GetOrDefault(ctx context.Context, repo Repository, key string, def []byte) ([]byte, error) {
	entry, err := repo.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}
