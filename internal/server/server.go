// Package server implements `ghgraph serve`: a JSON API over independent
// graph instances plus a single page that draws and animates them.
//
// Routes:
//
//	GET    /                                       web client
//	GET    /healthz                                liveness
//	GET    /metrics                                Prometheus metrics (when enabled)
//	GET    /api/graphs                             list instances
//	POST   /api/graphs                             create an instance {"repo": "owner/name"}
//	GET    /api/graphs/{graph}                     current snapshot
//	DELETE /api/graphs/{graph}                     drop an instance
//	POST   /api/graphs/{graph}/nodes/{node}/toggle toggle a node
//	POST   /api/graphs/{graph}/nodes/{node}/drag   pin a node at {"x", "y"}, or {"drop": true}
//	POST   /api/graphs/{graph}/step?ticks=N        advance the layout
//	POST   /api/graphs/{graph}/settle              run the layout until it cools
//	GET    /api/graphs/{graph}/svg                 snapshot as SVG
//	GET    /api/graphs/{graph}/dot                 snapshot as Graphviz DOT
//
// The layout runs on the server; the page calls step while the snapshot's
// alpha says the layout is hot and redraws from each response.
package server

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/ghgraph/pkg/session"
)

//go:embed index.html
var indexHTML []byte

const (
	// maxStepTicks bounds one step request.
	maxStepTicks = 50

	// settleTimeout bounds one settle request.
	settleTimeout = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	Registry *session.Registry
	Logger   *log.Logger
	Metrics  prometheus.Gatherer // serves /metrics when not nil
}

// Server routes HTTP requests to graph instances.
type Server struct {
	registry *session.Registry
	logger   *log.Logger
	metrics  prometheus.Gatherer
}

// New creates a server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{registry: opts.Registry, logger: logger, metrics: opts.Metrics}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "instances": s.registry.Len()})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/graphs", func(r chi.Router) {
		r.Get("/", s.listGraphs)
		r.Post("/", s.createGraph)
		r.Route("/{graph}", func(r chi.Router) {
			r.Get("/", s.getGraph)
			r.Delete("/", s.deleteGraph)
			r.Post("/nodes/{node}/toggle", s.toggleNode)
			r.Post("/nodes/{node}/drag", s.dragNode)
			r.Post("/step", s.step)
			r.Post("/settle", s.settle)
			r.Get("/svg", s.getSVG)
			r.Get("/dot", s.getDOT)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. Expired instances are evicted in the background.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.registry.RunCleanup(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("Serving", "addr", "http://"+addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
