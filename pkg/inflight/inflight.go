// Package inflight tracks which nodes have a fetch in progress.
//
// A node is pending between [Guard.Acquire] and [Guard.Release]. While it is
// pending a second Acquire fails with [ErrPending], which is how the
// controller disables the expand affordance of a node whose children are
// being fetched. Acquire hands out a unique token; only the holder of that
// token can release the mark, and a result arriving with a stale token is
// discarded by the caller.
//
// [Memory] serves a single process. [Redis] shares pending marks between
// processes serving the same graph instance, with a TTL so a crashed holder
// cannot pin a node forever.
package inflight

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL bounds how long a pending mark survives without a release. It
// must outlast the slowest fetch, or the fetch's result is refused.
const DefaultTTL = 2 * time.Minute

// ErrPending is returned by [Guard.Acquire] when key is already pending.
var ErrPending = errors.New("fetch already in progress")

// Guard marks keys as pending.
type Guard interface {
	// Acquire marks key as pending and returns the token that releases it.
	Acquire(ctx context.Context, key string) (string, error)

	// Release clears the mark if token still owns it. Releasing with a
	// stale token is a no-op.
	Release(ctx context.Context, key, token string) error

	// Pending reports whether key is currently marked.
	Pending(ctx context.Context, key string) (bool, error)

	// Holds reports whether token currently owns the mark on key.
	Holds(ctx context.Context, key, token string) (bool, error)
}

func newToken() string { return uuid.NewString() }
