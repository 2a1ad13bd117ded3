package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatal("empty cache should miss")
	}

	buf := []byte("value")
	if err := c.Set(ctx, "k", buf, 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	buf[0] = 'X' // cache must hold its own copy

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get = %v, %v", hit, err)
	}
	if string(data) != "value" {
		t.Errorf("data = %q, want %q", data, "value")
	}

	_ = c.Set(ctx, "k", []byte("other"), 0)
	if data, _, _ := c.Get(ctx, "k"); string(data) != "other" {
		t.Errorf("overwritten data = %q, want %q", data, "other")
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped, Len = %d", c.Len())
	}
}

func TestScopedCache(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryCache()
	a := Scoped(shared, "a:")
	b := Scoped(shared, "b:")

	_ = a.Set(ctx, "repo", []byte("from a"), 0)

	if _, hit, _ := b.Get(ctx, "repo"); hit {
		t.Error("scopes should be isolated")
	}
	data, hit, _ := a.Get(ctx, "repo")
	if !hit || string(data) != "from a" {
		t.Errorf("scoped Get = %q, %v", data, hit)
	}
	if _, hit, _ := shared.Get(ctx, "a:repo"); !hit {
		t.Error("inner cache should hold the prefixed key")
	}
	if shared.Len() != 1 {
		t.Errorf("shared Len = %d, want 1", shared.Len())
	}
}

func TestScopedNilInner(t *testing.T) {
	c := Scoped(nil, "p:")
	if err := c.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(context.Background(), "k"); hit {
		t.Error("nil inner should behave as NullCache")
	}
}

func TestHTTPKey(t *testing.T) {
	if got := HTTPKey("github", "repo:octo/hello"); got != "http:github:repo:octo/hello" {
		t.Errorf("HTTPKey = %q", got)
	}
}
