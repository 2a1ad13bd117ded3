// Package cache provides the response cache used by the remote API clients.
//
// The cache lives as long as the process that created it: ghgraph never
// persists fetched data across sessions. Within a session it lets two nodes
// that refer to the same repository (say, a repo owned by two expanded users)
// share one contributors request.
//
// Backends:
//   - [MemoryCache]: in-process map with per-entry TTL
//   - [NullCache]: stores nothing (caching disabled)
//   - [Scoped]: prefixes keys so independent graph instances never see each
//     other's entries
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}
