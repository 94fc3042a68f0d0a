package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/layer-3/sentinel/core"
)

// MemoryStore is an in-process KVStore backed by go-cache
type MemoryStore struct {
	// mu serializes writes so DeleteIfEqual observes no interleaved Set or Delete
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemoryStore creates a new in-memory store. Expired entries are evicted every cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get returns the value stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", core.ErrNotFound
	}

	value, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected value type %T for key", core.ErrUnexpected, v)
	}

	return value, nil
}

// Set stores value under key until ttl elapses
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: ttl must be positive", core.ErrUnexpected)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Set(key, value, ttl)
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Delete(key)
	return nil
}

// DeleteIfEqual removes key when it holds expected
func (s *MemoryStore) DeleteIfEqual(ctx context.Context, key, expected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(key)
	if !ok {
		return false, nil
	}
	if value, isString := v.(string); !isString || value != expected {
		return false, nil
	}

	s.cache.Delete(key)
	return true, nil
}

// Exists reports whether key holds an unexpired value
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := s.cache.Get(key)
	return ok, nil
}
