package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/ghgraph/pkg/cache"
	errs "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/integrations"
)

// fakeGitHub serves a tiny slice of the GitHub REST API.
func fakeGitHub(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if got := r.Header.Get("Accept"); got != DefaultAccept {
			t.Errorf("Accept = %q, want %q", got, DefaultAccept)
		}
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/repos/mbostock/d3":
			json.NewEncoder(w).Encode(Repo{ID: 943149, FullName: "mbostock/d3", Watchers: 16})
		case "/repos/mbostock/d3/contributors":
			if r.URL.Query().Get("anon") != "1" {
				t.Errorf("contributors requested without anon=1: %s", r.URL.RawQuery)
			}
			w.Write([]byte(`[
				{"id": 5, "login": "alice", "type": "User", "contributions": 40},
				{"name": "Bob", "email": "bob@example.com", "type": "Anonymous", "contributions": 3},
				{"id": 7, "login": "carol", "type": "User", "contributions": 1}
			]`))
		case "/users/alice/repos":
			json.NewEncoder(w).Encode([]Repo{
				{ID: 11, FullName: "alice/one", Watchers: 4},
				{ID: 12, FullName: "alice/two", Watchers: 0},
			})
		case "/repos/broken/repo":
			w.Write([]byte(`{"id": 1, "watchers_count": 3}`))
		case "/users/limited/repos":
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", "0")
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testClient(t *testing.T, serverURL string, c cache.Cache) *Client {
	t.Helper()
	return NewClient(Options{BaseURL: serverURL, Cache: c})
}

func TestClient_FetchRepo(t *testing.T) {
	server := fakeGitHub(t, nil)
	c := testClient(t, server.URL, nil)

	repo, err := c.FetchRepo(context.Background(), "mbostock/d3")
	if err != nil {
		t.Fatalf("FetchRepo() error: %v", err)
	}
	if repo.ID != 943149 || repo.FullName != "mbostock/d3" || repo.Watchers != 16 {
		t.Errorf("FetchRepo() = %+v", repo)
	}
}

func TestClient_FetchRepoNotFound(t *testing.T) {
	server := fakeGitHub(t, nil)
	c := testClient(t, server.URL, nil)

	_, err := c.FetchRepo(context.Background(), "nobody/nothing")
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error %v should wrap ErrNotFound", err)
	}
}

func TestClient_FetchRepoMissingFullName(t *testing.T) {
	server := fakeGitHub(t, nil)
	c := testClient(t, server.URL, nil)

	_, err := c.FetchRepo(context.Background(), "broken/repo")
	if !errs.Is(err, errs.ErrCodeMalformedResponse) {
		t.Errorf("error = %v, want MALFORMED_RESPONSE", err)
	}
}

func TestClient_FetchRepoInvalidName(t *testing.T) {
	var hits atomic.Int32
	server := fakeGitHub(t, &hits)
	c := testClient(t, server.URL, nil)

	for _, name := range []string{"", "noslash", "../etc", "a/b/c", "-x/y"} {
		if _, err := c.FetchRepo(context.Background(), name); !errs.Is(err, errs.ErrCodeInvalidRepo) {
			t.Errorf("FetchRepo(%q) error = %v, want INVALID_REPO", name, err)
		}
	}
	if hits.Load() != 0 {
		t.Errorf("invalid names reached the server %d times", hits.Load())
	}
}

func TestClient_FetchContributors(t *testing.T) {
	server := fakeGitHub(t, nil)
	c := testClient(t, server.URL, nil)

	list, err := c.FetchContributors(context.Background(), "mbostock/d3")
	if err != nil {
		t.Fatalf("FetchContributors() error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d contributors, want 3", len(list))
	}
	if list[0].Login != "alice" || list[0].Contributions != 40 || list[0].Anonymous() {
		t.Errorf("first contributor = %+v", list[0])
	}
	if !list[1].Anonymous() || list[1].Name != "Bob" {
		t.Errorf("second contributor should be anonymous Bob, got %+v", list[1])
	}
}

func TestClient_FetchUserRepos(t *testing.T) {
	server := fakeGitHub(t, nil)
	c := testClient(t, server.URL, nil)

	list, err := c.FetchUserRepos(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FetchUserRepos() error: %v", err)
	}
	if len(list) != 2 || list[0].FullName != "alice/one" || list[1].Watchers != 0 {
		t.Errorf("FetchUserRepos() = %+v", list)
	}
}

func TestClient_FetchUserReposRateLimited(t *testing.T) {
	server := fakeGitHub(t, nil)
	c := testClient(t, server.URL, nil)

	_, err := c.FetchUserRepos(context.Background(), "limited")
	if !errs.Is(err, errs.ErrCodeRateLimited) {
		t.Errorf("error = %v, want RATE_LIMITED", err)
	}
}

func TestClient_CachesResponses(t *testing.T) {
	var hits atomic.Int32
	server := fakeGitHub(t, &hits)
	c := testClient(t, server.URL, cache.NewMemoryCache())
	ctx := context.Background()

	for range 3 {
		if _, err := c.FetchContributors(ctx, "mbostock/d3"); err != nil {
			t.Fatal(err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestClient_PerPage(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClient(Options{BaseURL: server.URL, PerPage: 50})
	if _, err := c.FetchUserRepos(context.Background(), "alice"); err != nil {
		t.Fatal(err)
	}
	if query != "per_page=50" {
		t.Errorf("query = %q, want per_page=50", query)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
}

func TestClient_UserAgent(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"id": 1, "full_name": "a/b", "watchers_count": 0}`))
	}))
	defer server.Close()

	c := NewClient(Options{BaseURL: server.URL, Agent: "ghgraph/test"})
	if _, err := c.FetchRepo(context.Background(), "a/b"); err != nil {
		t.Fatal(err)
	}
	if agent != "ghgraph/test" {
		t.Errorf("User-Agent = %q", agent)
	}
}
