package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout bounds a single remote request.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a repository or user doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrMalformed is returned when a response body cannot be decoded or
	// fails validation.
	ErrMalformed = errors.New("malformed response")

	// ErrRateLimited is returned when the provider refuses a request because
	// the caller's quota is exhausted.
	ErrRateLimited = errors.New("rate limit exhausted")
)

// NewHTTPClient creates an HTTP client with the given request timeout.
// A non-positive timeout falls back to [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// PathEscape escapes a single URL path segment.
// This is a convenience wrapper around [url.PathEscape].
func PathEscape(s string) string { return url.PathEscape(s) }

// retryAfter reads the wait hint of a rate-limited response in seconds,
// from Retry-After or from the X-RateLimit-Reset epoch.
func retryAfter(h http.Header, now time.Time) int {
	if s := h.Get("Retry-After"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	if s := h.Get("X-RateLimit-Reset"); s != "" {
		if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
			if d := time.Unix(epoch, 0).Sub(now); d > 0 {
				return int(d.Round(time.Second) / time.Second)
			}
		}
	}
	return 0
}
