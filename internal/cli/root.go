package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgraph/pkg/config"
	errs "github.com/matzehuels/ghgraph/pkg/errors"
)

var errNoRepo = errs.New(errs.ErrCodeInvalidInput, "no repository given: pass owner/repo or set graph.repo in the config file")

// rootFlags are the persistent flags shared by all commands. Flags that
// were set on the command line override the config file.
type rootFlags struct {
	config  string
	width   int
	height  int
	seed    uint64
	timeout time.Duration
	retries int
	rate    float64
	perPage int
}

func (f *rootFlags) register(cmd *cobra.Command) {
	def := config.Default()
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "config file (default ~/.config/ghgraph/config.toml)")
	pf.IntVar(&f.width, "width", def.Graph.Width, "canvas width")
	pf.IntVar(&f.height, "height", def.Graph.Height, "canvas height")
	pf.Uint64Var(&f.seed, "seed", 0, "layout seed (0 picks one at random)")
	pf.DurationVar(&f.timeout, "timeout", def.GitHub.Timeout, "timeout per GitHub request")
	pf.IntVar(&f.retries, "retries", def.GitHub.Retries, "retries for transient GitHub errors")
	pf.Float64Var(&f.rate, "rate", def.GitHub.Rate, "GitHub requests per second (0 disables limiting)")
	pf.IntVar(&f.perPage, "per-page", def.GitHub.PerPage, "page size for list requests (0 keeps the API default)")
}

// loadConfig reads the config file and applies flags the user set.
func (c *CLI) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(c.flags.config)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Graph.Width = c.flags.width
	}
	if flags.Changed("height") {
		cfg.Graph.Height = c.flags.height
	}
	if flags.Changed("seed") {
		cfg.Graph.Seed = c.flags.seed
	}
	if flags.Changed("timeout") {
		cfg.GitHub.Timeout = c.flags.timeout
	}
	if flags.Changed("retries") {
		cfg.GitHub.Retries = c.flags.retries
	}
	if flags.Changed("rate") {
		cfg.GitHub.Rate = c.flags.rate
	}
	if flags.Changed("per-page") {
		cfg.GitHub.PerPage = c.flags.perPage
	}
	return cfg, cfg.Validate()
}

// repoArg returns the root repository: the first argument if given, the
// configured one otherwise.
func repoArg(cfg config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Graph.Repo == "" {
		return "", errNoRepo
	}
	return cfg.Graph.Repo, nil
}
