// Package config loads ghgraph settings from a TOML file.
//
// Settings are grouped by concern:
//
//	[graph]
//	width  = 1200
//	height = 600
//	repo   = "mbostock/d3"
//
//	[github]
//	timeout = "10s"
//	retries = 0
//	rate    = 1.0
//	burst   = 5
//
//	[server]
//	addr         = "127.0.0.1:8080"
//	instance_ttl = "30m"
//	redis        = ""
//
// Every field has a default (see [Default]); the file only needs the keys
// that differ. Command-line flags override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/time/rate"

	"github.com/matzehuels/ghgraph/pkg/controller"
	errs "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/httputil"
	"github.com/matzehuels/ghgraph/pkg/inflight"
	"github.com/matzehuels/ghgraph/pkg/integrations/github"
	"github.com/matzehuels/ghgraph/pkg/session"
)

const (
	appName  = "ghgraph"
	fileName = "config.toml"
)

// Config holds all settings.
type Config struct {
	Graph  Graph  `toml:"graph"`
	GitHub GitHub `toml:"github"`
	Server Server `toml:"server"`
}

// Graph configures the canvas and the root of the graph.
type Graph struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Repo   string `toml:"repo"` // optional; commands take the root as an argument
	Seed   uint64 `toml:"seed"` // 0 picks a random layout
}

// GitHub configures the remote API client.
type GitHub struct {
	BaseURL    string        `toml:"base_url"`
	Accept     string        `toml:"accept"`
	PerPage    int           `toml:"per_page"`
	Timeout    time.Duration `toml:"timeout"`
	Retries    int           `toml:"retries"`
	RetryDelay time.Duration `toml:"retry_delay"`
	Rate       float64       `toml:"rate"` // requests per second; 0 disables limiting
	Burst      int           `toml:"burst"`
}

// Server configures `ghgraph serve`.
type Server struct {
	Addr         string        `toml:"addr"`
	InstanceTTL  time.Duration `toml:"instance_ttl"`
	MaxInstances int           `toml:"max_instances"`
	PendingTTL   time.Duration `toml:"pending_ttl"`
	Redis        string        `toml:"redis"` // shares pending marks between processes when set
	RedisPrefix  string        `toml:"redis_prefix"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Graph: Graph{
			Width:  controller.DefaultWidth,
			Height: controller.DefaultHeight,
		},
		GitHub: GitHub{
			BaseURL:    github.DefaultBaseURL,
			Accept:     github.DefaultAccept,
			Timeout:    10 * time.Second,
			RetryDelay: time.Second,
			Rate:       1,
			Burst:      5,
		},
		Server: Server{
			Addr:         "127.0.0.1:8080",
			InstanceTTL:  session.DefaultTTL,
			MaxInstances: session.DefaultMaxInstances,
			PendingTTL:   inflight.DefaultTTL,
			RedisPrefix:  appName + ":",
		},
	}
}

// Path returns the default config file location using the XDG standard
// (~/.config/ghgraph/config.toml).
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads settings from path on top of [Default]. An empty path loads
// the file at [Path] if it exists and falls back to the defaults otherwise.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks that the settings can build a working graph.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Graph.Width <= 0 {
		add("graph.width must be positive, got %d", c.Graph.Width)
	}
	if c.Graph.Height <= controller.FrameMargin {
		add("graph.height must exceed %d, got %d", controller.FrameMargin, c.Graph.Height)
	}
	if c.Graph.Repo != "" {
		if _, _, err := github.ParseRepoRef(c.Graph.Repo); err != nil {
			add("graph.repo: %v", err)
		}
	}

	if err := errs.ValidateURL(c.GitHub.BaseURL); err != nil {
		add("github.base_url: %v", errs.UserMessage(err))
	}
	if c.GitHub.PerPage < 0 || c.GitHub.PerPage > 100 {
		add("github.per_page must be between 0 and 100, got %d", c.GitHub.PerPage)
	}
	if c.GitHub.Timeout <= 0 {
		add("github.timeout must be positive")
	}
	if c.GitHub.Retries < 0 {
		add("github.retries must not be negative")
	}
	if c.GitHub.Rate < 0 {
		add("github.rate must not be negative")
	}
	if c.GitHub.Rate > 0 && c.GitHub.Burst < 1 {
		add("github.burst must be at least 1 when rate limiting")
	}

	if c.Server.Addr == "" {
		add("server.addr must not be empty")
	}
	if c.Server.InstanceTTL <= 0 {
		add("server.instance_ttl must be positive")
	}
	if c.Server.MaxInstances < 1 {
		add("server.max_instances must be at least 1")
	}
	if budget := c.RetryPolicy().Budget(c.GitHub.Timeout); c.Server.PendingTTL < budget {
		add("server.pending_ttl must outlast a fetch with all retries (%s), got %s", budget, c.Server.PendingTTL)
	}

	if len(problems) > 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}

// RetryPolicy returns the retry policy for remote requests.
func (c Config) RetryPolicy() httputil.Policy {
	return httputil.Policy{Retries: c.GitHub.Retries, Delay: c.GitHub.RetryDelay}
}

// Limiter returns the client-side rate limiter, or nil when limiting is off.
func (c Config) Limiter() *rate.Limiter {
	if c.GitHub.Rate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.GitHub.Rate), c.GitHub.Burst)
}

// ClientOptions returns the GitHub client options described by c.
func (c Config) ClientOptions() github.Options {
	return github.Options{
		BaseURL: c.GitHub.BaseURL,
		Accept:  c.GitHub.Accept,
		PerPage: c.GitHub.PerPage,
		Retry:   c.RetryPolicy(),
		Limiter: c.Limiter(),
		Timeout: c.GitHub.Timeout,
	}
}
