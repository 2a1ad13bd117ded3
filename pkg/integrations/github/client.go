package github

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/ghgraph/pkg/cache"
	errs "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/httputil"
	"github.com/matzehuels/ghgraph/pkg/integrations"
)

// Defaults for [Options].
const (
	DefaultBaseURL = "https://api.github.com"
	DefaultAccept  = "application/vnd.github.v3+json"
)

// Options configures a [Client].
type Options struct {
	BaseURL string // API root; defaults to [DefaultBaseURL]
	Accept  string // media type for the Accept header; defaults to [DefaultAccept]
	PerPage int    // page size for list endpoints; 0 keeps the API default
	Agent   string // User-Agent header; empty leaves the HTTP client default

	Cache   cache.Cache // responses are cached for the lifetime of the cache
	Retry   httputil.Policy
	Limiter *rate.Limiter
	Timeout time.Duration
}

// Client reads repositories and contributors from the GitHub REST API.
// All requests are unauthenticated.
type Client struct {
	*integrations.Client
	baseURL string
	perPage int
}

// NewClient creates a GitHub API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Accept == "" {
		opts.Accept = DefaultAccept
	}
	headers := map[string]string{"Accept": opts.Accept}
	if opts.Agent != "" {
		headers["User-Agent"] = opts.Agent
	}
	var c cache.Cache
	if opts.Cache != nil {
		c = cache.Scoped(opts.Cache, "github:")
	}
	return &Client{
		Client: integrations.NewClient(integrations.Options{
			Cache:   c,
			Headers: headers,
			Retry:   opts.Retry,
			Limiter: opts.Limiter,
			Timeout: opts.Timeout,
		}),
		baseURL: opts.BaseURL,
		perPage: opts.PerPage,
	}
}

// FetchRepo retrieves a single repository by its "owner/name" full name.
func (c *Client) FetchRepo(ctx context.Context, fullName string) (*Repo, error) {
	owner, name, err := ParseRepoRef(fullName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidRepo, err, "repository %q", fullName)
	}

	var repo Repo
	err = c.Cached(ctx, cache.HTTPKey("repo", fullName), "repo", &repo, func() error {
		u := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(name))
		if err := c.Get(ctx, u, &repo); err != nil {
			return err
		}
		return malformed(repo.validate())
	})
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// FetchContributors lists the contributors of a repository, anonymous
// contributors included, in the order GitHub returns them.
func (c *Client) FetchContributors(ctx context.Context, fullName string) ([]Contributor, error) {
	owner, name, err := ParseRepoRef(fullName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidRepo, err, "repository %q", fullName)
	}

	var list []Contributor
	err = c.Cached(ctx, cache.HTTPKey("contributors", fullName), "contributors", &list, func() error {
		q := url.Values{"anon": {"1"}}
		c.page(q)
		u := fmt.Sprintf("%s/repos/%s/%s/contributors?%s", c.baseURL, url.PathEscape(owner), url.PathEscape(name), q.Encode())
		if err := c.Get(ctx, u, &list); err != nil {
			return err
		}
		for _, ct := range list {
			if err := ct.validate(); err != nil {
				return malformed(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// FetchUserRepos lists the public repositories owned by login.
func (c *Client) FetchUserRepos(ctx context.Context, login string) ([]Repo, error) {
	if err := ValidateLogin(login); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "user %q", login)
	}

	var list []Repo
	err := c.Cached(ctx, cache.HTTPKey("user-repos", login), "user-repos", &list, func() error {
		u := fmt.Sprintf("%s/users/%s/repos", c.baseURL, url.PathEscape(login))
		q := url.Values{}
		if c.page(q) {
			u += "?" + q.Encode()
		}
		if err := c.Get(ctx, u, &list); err != nil {
			return err
		}
		for _, r := range list {
			if err := r.validate(); err != nil {
				return malformed(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) page(q url.Values) bool {
	if c.perPage <= 0 {
		return false
	}
	q.Set("per_page", fmt.Sprint(c.perPage))
	return true
}

func malformed(err error) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.ErrCodeMalformedResponse, err, "github response")
}
