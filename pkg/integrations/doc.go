// Package integrations provides the shared HTTP client behind the remote API
// clients.
//
// # Overview
//
// The only remote source ghgraph reads is the GitHub REST API, implemented in
// the [github] subpackage on top of [Client].
//
// [Client] handles:
//   - JSON GET requests with default headers (e.g. the API version Accept header)
//   - Client-side pacing with a token-bucket limiter
//   - Optional retries for transient failures (see [httputil.Policy])
//   - Session-scoped response caching via [cache.Cache]
//   - Observability hooks for every request
//
// # Errors
//
// Failures are returned as coded errors from pkg/errors wrapping one of the
// sentinels of this package:
//
//	404                          NOT_FOUND           wraps ErrNotFound
//	429, 403 with quota at zero  RATE_LIMITED        wraps ErrRateLimited
//	5xx, transport errors        NETWORK_ERROR       wraps ErrNetwork (retryable)
//	client timeout               TIMEOUT             wraps ErrNetwork (retryable)
//	undecodable body             MALFORMED_RESPONSE  wraps ErrMalformed
//
// [github]: github.com/matzehuels/ghgraph/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/ghgraph/pkg/cache.Cache
// [httputil.Policy]: github.com/matzehuels/ghgraph/pkg/httputil.Policy
package integrations
