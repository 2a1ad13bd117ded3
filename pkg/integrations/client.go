package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/ghgraph/pkg/cache"
	errs "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/httputil"
	"github.com/matzehuels/ghgraph/pkg/observability"
)

// Options configures a [Client]. The zero value is usable: no cache, no
// retries, no client-side rate limit and [DefaultTimeout].
type Options struct {
	Cache    cache.Cache       // response cache; nil disables caching
	CacheTTL time.Duration     // lifetime of cached responses; 0 keeps them for the session
	Headers  map[string]string // applied to every request
	Retry    httputil.Policy   // retries for transient failures
	Limiter  *rate.Limiter     // client-side request pacing; nil means unlimited
	Timeout  time.Duration     // per-request timeout
}

// Client provides shared HTTP functionality for remote API clients.
// It handles caching, retry logic, request pacing and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
	retry   httputil.Policy
	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(opts.Timeout),
		cache:   c,
		ttl:     opts.CacheTTL,
		headers: opts.Headers,
		retry:   opts.Retry,
		limiter: opts.Limiter,
		now:     time.Now,
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// keyType labels the entry for observability hooks (e.g. "contributors").
// The fetch function should populate v; on success, v is stored in the cache.
// Cache failures never fail the call.
func (c *Client) Cached(ctx context.Context, key, keyType string, v any, fetch func() error) error {
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		if json.Unmarshal(data, v) == nil {
			observability.Cache().OnCacheHit(ctx, keyType)
			return nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyType)

	if err := c.retry.Do(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, keyType, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// Undecodable bodies yield a MALFORMED_RESPONSE error.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeMalformedResponse, fmt.Errorf("%w: %v", ErrMalformed, err), "decode %s", url)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errs.Wrap(errs.ErrCodeTimeout, err, "wait for request slot")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		code := errs.ErrCodeNetwork
		if isTimeout(err) {
			code = errs.ErrCodeTimeout
		}
		return nil, httputil.Retryable(errs.Wrap(code, fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", path))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, c.now()); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response, now time.Time) error {
	code := resp.StatusCode
	path := ""
	if resp.Request != nil && resp.Request.URL != nil {
		path = resp.Request.URL.Path
	}
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errs.Wrap(errs.ErrCodeNotFound, ErrNotFound, "GET %s", path)
	case code == http.StatusTooManyRequests,
		code == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		limited := &errs.RateLimitedError{RetryAfter: retryAfter(resp.Header, now)}
		return errs.Wrap(errs.ErrCodeRateLimited, fmt.Errorf("%w: %v", ErrRateLimited, limited), "GET %s", path)
	case code >= 500:
		return httputil.Retryable(errs.Wrap(errs.ErrCodeNetwork, fmt.Errorf("%w: status %d", ErrNetwork, code), "GET %s", path))
	default:
		return errs.Wrap(errs.ErrCodeNetwork, fmt.Errorf("%w: status %d", ErrNetwork, code), "GET %s", path)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
