// Package httputil provides retry helpers for the remote API clients.
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only. Callers mark an
// error as transient by wrapping it with [Retryable]:
//
//   - Network errors
//   - 5xx server errors
//
// Any other error (404, malformed JSON, rate limiting) is returned at once.
//
// A [Policy] bundles the retry count and initial delay. ghgraph defaults to
// [NoRetry]: an expansion that fails is reported to the user, who may click
// again. Retries can be enabled through configuration:
//
//	p := httputil.Policy{Retries: 2, Delay: 500 * time.Millisecond}
//	err := p.Do(ctx, func() error {
//	    return fetch(ctx)
//	})
package httputil
