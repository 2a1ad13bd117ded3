package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgraph/internal/server"
	"github.com/matzehuels/ghgraph/pkg/cache"
	"github.com/matzehuels/ghgraph/pkg/config"
	"github.com/matzehuels/ghgraph/pkg/controller"
	"github.com/matzehuels/ghgraph/pkg/inflight"
	"github.com/matzehuels/ghgraph/pkg/integrations/github"
	"github.com/matzehuels/ghgraph/pkg/observability/prom"
	"github.com/matzehuels/ghgraph/pkg/session"
)

// serveCommand creates the serve command for the web client.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph explorer in the browser",
		Long: `Serve starts a local web server. Each browser tab opens its own graph;
graphs that are not used for a while are dropped.

With --redis, pending fetches are marked in redis so several ghgraph
processes behind one address do not fetch the same node twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("redis") {
				cfg.Server.Redis = redisAddr
			}
			return c.runServe(cmd.Context(), cfg, !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for shared pending marks")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, metrics bool) error {
	guard, closeGuard, err := c.newGuard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGuard()

	opts := server.Options{
		Registry: session.NewRegistry(c.graphFactory(cfg, guard), cfg.Server.InstanceTTL, cfg.Server.MaxInstances),
		Logger:   c.Logger,
	}
	if metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom.New(reg).Register()
		opts.Metrics = reg
	}

	printInfo("Serving on %s", StyleValue.Render("http://"+cfg.Server.Addr))
	printDetail("Graphs expire after %s without use", cfg.Server.InstanceTTL)
	return server.New(opts).ListenAndServe(ctx, cfg.Server.Addr)
}

// graphFactory builds the controllers of served graphs. All graphs share
// the rate limiter and the guard; each has its own response cache.
func (c *CLI) graphFactory(cfg config.Config, guard inflight.Guard) session.Factory {
	base := clientOptions(cfg)
	return func(ctx context.Context, id, repo string) (*controller.Controller, error) {
		opts := base
		opts.Cache = cache.NewMemoryCache()
		return controller.New(ctx, github.NewClient(opts), controller.Options{
			Repo:     repo,
			Width:    cfg.Graph.Width,
			Height:   cfg.Graph.Height,
			Instance: id,
			Seed:     cfg.Graph.Seed,
			Guard:    guard,
			Logger:   c.Logger.With("graph", shortID(id)),
		})
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
