// Package github provides an HTTP client for the three GitHub REST endpoints
// the graph explorer needs.
//
// # Endpoints
//
//	GET /repos/{owner}/{name}                   -> [Repo]
//	GET /repos/{owner}/{name}/contributors?anon=1 -> [][Contributor]
//	GET /users/{login}/repos                    -> [][Repo]
//
// Requests are unauthenticated and send the configured Accept media type
// (default [DefaultAccept]). Without a token GitHub allows 60 requests per
// hour, so the client is usually paired with a rate limiter and a session
// cache:
//
//	client := github.NewClient(github.Options{
//	    Cache:   cache.NewMemoryCache(),
//	    Limiter: rate.NewLimiter(1, 5),
//	})
//	repo, err := client.FetchRepo(ctx, "mbostock/d3")
//
// # Validation
//
// Names are validated before a request is sent ([ParseRepoRef],
// [ValidateLogin]) and decoded records are validated before they are
// returned: a repository without full_name or a contributor with a negative
// contribution count is a MALFORMED_RESPONSE error.
package github
