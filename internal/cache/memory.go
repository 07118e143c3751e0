package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache returns an in-process cache used when Redis is not
// configured or unreachable.
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) Cache {
	return &memoryCache{store: gocache.New(defaultExpiration, cleanupInterval)}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	val, ok := m.store.Get(key)
	if !ok {
		return "", ErrMiss
	}
	s, _ := val.(string)
	return s, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	m.store.Set(key, value, expiration)
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

func (m *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.store.Get(key)
	return ok, nil
}
