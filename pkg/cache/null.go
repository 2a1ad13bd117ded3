package cache

import (
	"context"
	"time"
)

// NullCache stores nothing, so every lookup goes to the remote API.
// Clients built without a cache fall back to it.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
