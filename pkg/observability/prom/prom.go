// Package prom implements the observability hooks with Prometheus collectors.
//
//	reg := prometheus.NewRegistry()
//	hooks := prom.New(reg)
//	observability.SetGraphHooks(hooks)
//	observability.SetHTTPHooks(hooks)
//	observability.SetCacheHooks(hooks)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/ghgraph/pkg/observability"
)

const namespace = "ghgraph"

// Hooks records graph, HTTP and cache events as Prometheus metrics.
type Hooks struct {
	expansions        *prometheus.CounterVec
	expansionDuration *prometheus.HistogramVec
	expansionChildren prometheus.Histogram
	toggles           *prometheus.CounterVec
	settleTicks       prometheus.Histogram
	visibleNodes      prometheus.Gauge

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec

	cacheEvents *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		expansions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expansions_total",
			Help:      "Node expansions by node kind and result",
		}, []string{"kind", "result"}),
		expansionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expansion_duration_seconds",
			Help:      "Time to fetch and attach a node's children",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		}, []string{"kind"}),
		expansionChildren: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expansion_children",
			Help:      "Children attached per successful expansion",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toggles_total",
			Help:      "Collapses and cached re-expansions",
		}, []string{"action"}),
		settleTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settle_ticks",
			Help:      "Simulation ticks until convergence",
			Buckets:   prometheus.LinearBuckets(0, 50, 10),
		}),
		visibleNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_nodes",
			Help:      "Visible nodes in the most recently settled graph",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Remote API responses by status code",
		}, []string{"host", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Remote API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_request_errors_total",
			Help:      "Remote API requests that failed before a response",
		}, []string{"host"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Response cache hits, misses and writes",
		}, []string{"key_type", "event"}),
	}

	reg.MustRegister(
		h.expansions, h.expansionDuration, h.expansionChildren,
		h.toggles, h.settleTicks, h.visibleNodes,
		h.requests, h.requestDuration, h.requestErrors,
		h.cacheEvents,
	)
	return h
}

// Register installs h as the graph, HTTP and cache hooks.
func (h *Hooks) Register() {
	observability.SetGraphHooks(h)
	observability.SetHTTPHooks(h)
	observability.SetCacheHooks(h)
}

func (h *Hooks) OnExpandStart(context.Context, string, string) {}

func (h *Hooks) OnExpandComplete(_ context.Context, kind string, children int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.expansions.WithLabelValues(kind, result).Inc()
	h.expansionDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		h.expansionChildren.Observe(float64(children))
	}
}

func (h *Hooks) OnToggle(_ context.Context, action string) {
	h.toggles.WithLabelValues(action).Inc()
}

func (h *Hooks) OnSettle(_ context.Context, nodes, ticks int, _ time.Duration) {
	h.settleTicks.Observe(float64(ticks))
	h.visibleNodes.Set(float64(nodes))
}

func (h *Hooks) OnRequest(context.Context, string, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.requests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.requestDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *Hooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.requestErrors.WithLabelValues(host).Inc()
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

var (
	_ observability.GraphHooks = (*Hooks)(nil)
	_ observability.HTTPHooks  = (*Hooks)(nil)
	_ observability.CacheHooks = (*Hooks)(nil)
)
