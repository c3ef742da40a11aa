// Package memory provides an in-process KeyValueStore.
//
// It backs the session scope in production (sessions are meant to disappear
// on restart) and every scope in tests. Entries live in an LRU cache, so a
// store built with a fixed capacity forgets its least recently used keys
// first. For the session scope that means the oldest idle sessions are logged
// out when the server holds more than `capacity` of them.
package memory

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/repository"
)

var _ repository.KeyValueStore = (*Store)(nil)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 10000

// Store is a KeyValueStore backed by an LRU cache.
// The cache is safe for concurrent use; no extra locking is needed.
type Store struct {
	cache *lru.Cache[string, []byte]
}

// New creates a Store holding at most capacity keys.
func New(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, fmt.Errorf("memory: creating cache: %w", err)
	}
	return &Store{cache: cache}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, apperror.NotFound("key", key)
	}
	// Hand out a copy: callers must not be able to mutate stored bytes.
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.cache.Add(key, stored)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Len reports how many keys are currently held.
func (s *Store) Len() int {
	return s.cache.Len()
}
