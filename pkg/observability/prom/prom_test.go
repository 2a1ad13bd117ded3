package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/ghgraph/pkg/observability"
)

func TestExpansionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(reg)
	ctx := context.Background()

	h.OnExpandComplete(ctx, "repo", 12, 200*time.Millisecond, nil)
	h.OnExpandComplete(ctx, "repo", 0, time.Second, errors.New("boom"))
	h.OnExpandComplete(ctx, "user", 3, 50*time.Millisecond, nil)

	if got := testutil.ToFloat64(h.expansions.WithLabelValues("repo", "ok")); got != 1 {
		t.Errorf("repo ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.expansions.WithLabelValues("repo", "error")); got != 1 {
		t.Errorf("repo error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(h.expansions); got != 3 {
		t.Errorf("expansion series = %d, want 3", got)
	}
}

func TestToggleAndSettleMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(reg)
	ctx := context.Background()

	h.OnToggle(ctx, "collapse")
	h.OnToggle(ctx, "collapse")
	h.OnToggle(ctx, "expand")
	h.OnSettle(ctx, 42, 290, time.Second)

	if got := testutil.ToFloat64(h.toggles.WithLabelValues("collapse")); got != 2 {
		t.Errorf("collapse = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.visibleNodes); got != 42 {
		t.Errorf("visible nodes = %v, want 42", got)
	}
}

func TestHTTPAndCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(reg)
	ctx := context.Background()

	h.OnResponse(ctx, "GET", "api.github.com", "/repos/a/b", 200, time.Millisecond)
	h.OnResponse(ctx, "GET", "api.github.com", "/repos/a/c", 404, time.Millisecond)
	h.OnError(ctx, "GET", "api.github.com", "/users/x/repos", errors.New("reset"))
	h.OnCacheHit(ctx, "contributors")
	h.OnCacheMiss(ctx, "contributors")

	if got := testutil.ToFloat64(h.requests.WithLabelValues("api.github.com", "404")); got != 1 {
		t.Errorf("404 responses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.requestErrors.WithLabelValues("api.github.com")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.cacheEvents.WithLabelValues("contributors", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

func TestRegister(t *testing.T) {
	defer observability.Reset()

	h := New(prometheus.NewRegistry())
	h.Register()

	if observability.Graph() != h || observability.HTTP() != h || observability.Cache() != h {
		t.Error("Register should install the hooks globally")
	}
}
