package cache

import (
	"context"
	"time"
)

// ScopedCache wraps a Cache with a key prefix. The server gives every graph
// instance its own scope so instances never observe each other's responses.
//
// Example usage:
//
//	shared := NewMemoryCache()
//	a := Scoped(shared, "graph:3f2a...:")
//	b := Scoped(shared, "graph:9c1e...:")
type ScopedCache struct {
	inner  Cache
	prefix string
}

// Scoped creates a cache view that prepends prefix to every key.
// A nil inner cache is replaced by a [NullCache].
func Scoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &ScopedCache{inner: inner, prefix: prefix}
}

// Get reads the prefixed key.
func (s *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set writes the prefixed key.
func (s *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

// Ensure ScopedCache implements Cache.
var _ Cache = (*ScopedCache)(nil)
