package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"historyScope/internal/metrics"
)

// Key identifies a cache entry. The TTL belongs to the key type.
type Key interface {
	CacheKey() string
	TTL() time.Duration
}

// Cache stores values of one domain under typed keys.
type Cache[K Key, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V)
}

// Memory is an in-process Cache backed by go-cache.
type Memory[K Key, V any] struct {
	name  string
	store *gocache.Cache
}

// NewMemory creates an in-process cache; expired entries are purged every cleanup interval.
func NewMemory[K Key, V any](name string, cleanup time.Duration) *Memory[K, V] {
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &Memory[K, V]{
		name:  name,
		store: gocache.New(gocache.NoExpiration, cleanup),
	}
}

func (m *Memory[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V
	raw, ok := m.store.Get(key.CacheKey())
	if !ok {
		metrics.CacheLookups.WithLabelValues(m.name, "miss").Inc()
		return zero, false
	}
	value, ok := raw.(V)
	if !ok {
		metrics.CacheLookups.WithLabelValues(m.name, "miss").Inc()
		return zero, false
	}
	metrics.CacheLookups.WithLabelValues(m.name, "hit").Inc()
	return value, true
}

func (m *Memory[K, V]) Set(_ context.Context, key K, value V) {
	m.store.Set(key.CacheKey(), value, key.TTL())
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (m *Memory[K, V]) Len() int {
	return m.store.ItemCount()
}
