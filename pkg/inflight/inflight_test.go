package inflight_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ghgraph/pkg/inflight"
)

func guards(t *testing.T) map[string]inflight.Guard {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]inflight.Guard{
		"memory": inflight.NewMemory(0),
		"redis":  inflight.NewRedis(client, "test:", time.Minute),
	}
}

func TestGuard_AcquireRelease(t *testing.T) {
	for name, g := range guards(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			token, err := g.Acquire(ctx, "943149-5")
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			pending, err := g.Pending(ctx, "943149-5")
			require.NoError(t, err)
			assert.True(t, pending)

			_, err = g.Acquire(ctx, "943149-5")
			assert.ErrorIs(t, err, inflight.ErrPending)

			holds, err := g.Holds(ctx, "943149-5", token)
			require.NoError(t, err)
			assert.True(t, holds)

			require.NoError(t, g.Release(ctx, "943149-5", token))
			pending, err = g.Pending(ctx, "943149-5")
			require.NoError(t, err)
			assert.False(t, pending)

			_, err = g.Acquire(ctx, "943149-5")
			assert.NoError(t, err)
		})
	}
}

func TestGuard_StaleTokenCannotRelease(t *testing.T) {
	for name, g := range guards(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			token, err := g.Acquire(ctx, "k")
			require.NoError(t, err)

			require.NoError(t, g.Release(ctx, "k", "not-"+token))
			pending, _ := g.Pending(ctx, "k")
			assert.True(t, pending, "stale token released the mark")

			holds, _ := g.Holds(ctx, "k", "not-"+token)
			assert.False(t, holds)
		})
	}
}

func TestGuard_IndependentKeys(t *testing.T) {
	for name, g := range guards(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := g.Acquire(ctx, "a")
			require.NoError(t, err)
			_, err = g.Acquire(ctx, "b")
			assert.NoError(t, err)
		})
	}
}

func TestRedis_MarkExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	g := inflight.NewRedis(client, "test:", 5*time.Second)
	ctx := context.Background()

	_, err := g.Acquire(ctx, "slow")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:pending:slow"))

	mr.FastForward(6 * time.Second)

	pending, err := g.Pending(ctx, "slow")
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestMemory_MarkExpires(t *testing.T) {
	g := inflight.NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	_, err := g.Acquire(ctx, "slow")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	_, err = g.Acquire(ctx, "slow")
	assert.NoError(t, err)
}
