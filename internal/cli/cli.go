// Package cli implements the ghgraph command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgraph/pkg/buildinfo"
	"github.com/matzehuels/ghgraph/pkg/cache"
	"github.com/matzehuels/ghgraph/pkg/config"
	"github.com/matzehuels/ghgraph/pkg/controller"
	errs "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/inflight"
	"github.com/matzehuels/ghgraph/pkg/integrations/github"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "ghgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	flags  rootFlags
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "ghgraph explores GitHub repositories and contributors as a force-directed graph",
		Long: `ghgraph starts from one repository and lazily expands it into its
contributors, their repositories, those repositories' contributors and so on,
laying the graph out with a force simulation.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	c.flags.register(root)

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// clientOptions returns GitHub client options for cfg. Every call gets its
// own response cache, so nothing fetched outlives the graph it was
// fetched for.
func clientOptions(cfg config.Config) github.Options {
	opts := cfg.ClientOptions()
	opts.Cache = cache.NewMemoryCache()
	opts.Agent = buildinfo.UserAgent()
	return opts
}

// newController loads repo and builds a graph for it.
func (c *CLI) newController(ctx context.Context, cfg config.Config, repo string, guard inflight.Guard) (*controller.Controller, error) {
	return controller.New(ctx, github.NewClient(clientOptions(cfg)), controller.Options{
		Repo:   repo,
		Width:  cfg.Graph.Width,
		Height: cfg.Graph.Height,
		Seed:   cfg.Graph.Seed,
		Guard:  guard,
		Logger: c.Logger,
	})
}

// newGuard returns the pending-fetch guard: redis-backed when a redis
// address is configured, in-process otherwise. The returned func releases
// the connection.
func (c *CLI) newGuard(ctx context.Context, cfg config.Config) (inflight.Guard, func(), error) {
	if cfg.Server.Redis == "" {
		return inflight.NewMemory(cfg.Server.PendingTTL), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Server.Redis})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "connect to redis at %s", cfg.Server.Redis)
	}
	c.Logger.Debug("Using redis for pending marks", "addr", cfg.Server.Redis)
	return inflight.NewRedis(client, cfg.Server.RedisPrefix, cfg.Server.PendingTTL), func() { client.Close() }, nil
}
