package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ghgraph/pkg/controller"
	"github.com/matzehuels/ghgraph/pkg/integrations/github"
)

type rootOnly struct{}

func (rootOnly) FetchRepo(ctx context.Context, fullName string) (*github.Repo, error) {
	return &github.Repo{ID: 1, FullName: fullName, Watchers: 4}, nil
}

func (rootOnly) FetchContributors(context.Context, string) ([]github.Contributor, error) {
	return nil, nil
}

func (rootOnly) FetchUserRepos(context.Context, string) ([]github.Repo, error) {
	return nil, nil
}

func testRegistry(t *testing.T, ttl time.Duration, max int) (*Registry, *time.Time) {
	t.Helper()
	factory := func(ctx context.Context, id, repo string) (*controller.Controller, error) {
		return controller.New(ctx, rootOnly{}, controller.Options{
			Repo:     repo,
			Instance: id,
			Seed:     1,
			Logger:   log.New(io.Discard),
		})
	}
	r := NewRegistry(factory, ttl, max)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegistryCreateGet(t *testing.T) {
	r, _ := testRegistry(t, time.Minute, 0)

	s, err := r.Create(context.Background(), "mbostock/d3")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("id %q is not a UUID", s.ID)
	}
	if s.Controller.Repo() != "mbostock/d3" || s.Controller.Snapshot().Instance != s.ID {
		t.Error("controller not built for this instance")
	}

	got, err := r.Get(s.ID)
	if err != nil || got != s {
		t.Errorf("Get() = %v, %v", got, err)
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRegistryExpiry(t *testing.T) {
	r, now := testRegistry(t, time.Minute, 0)
	s, _ := r.Create(context.Background(), "mbostock/d3")

	*now = now.Add(50 * time.Second)
	if _, err := r.Get(s.ID); err != nil {
		t.Fatalf("Get() before expiry: %v", err)
	}

	// Get extended the lifetime by another minute.
	*now = now.Add(50 * time.Second)
	if _, err := r.Get(s.ID); err != nil {
		t.Fatalf("Get() after refresh: %v", err)
	}

	*now = now.Add(2 * time.Minute)
	if _, err := r.Get(s.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("Get() error = %v, want ErrExpired", err)
	}
	if r.Len() != 0 {
		t.Errorf("expired instance not removed")
	}
}

func TestRegistryCleanupAndList(t *testing.T) {
	r, now := testRegistry(t, time.Minute, 0)
	old, _ := r.Create(context.Background(), "a/old")
	*now = now.Add(30 * time.Second)
	fresh, _ := r.Create(context.Background(), "a/fresh")

	if list := r.List(); len(list) != 2 || list[0] != old || list[1] != fresh {
		t.Errorf("List() = %v", list)
	}

	*now = now.Add(45 * time.Second)
	if n := r.Cleanup(); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	if list := r.List(); len(list) != 1 || list[0] != fresh {
		t.Errorf("List() after cleanup = %v", list)
	}

	r.Delete(fresh.ID)
	if r.Len() != 0 {
		t.Error("Delete() left the instance")
	}
}

func TestRegistryFull(t *testing.T) {
	r, now := testRegistry(t, time.Minute, 1)
	if _, err := r.Create(context.Background(), "a/one"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Create(context.Background(), "a/two"); !errors.Is(err, ErrFull) {
		t.Errorf("Create() error = %v, want ErrFull", err)
	}

	// Expired instances make room.
	*now = now.Add(2 * time.Minute)
	if _, err := r.Create(context.Background(), "a/two"); err != nil {
		t.Errorf("Create() after expiry: %v", err)
	}
}

func TestRegistryFactoryError(t *testing.T) {
	want := errors.New("boom")
	r := NewRegistry(func(context.Context, string, string) (*controller.Controller, error) {
		return nil, want
	}, 0, 0)
	if _, err := r.Create(context.Background(), "a/b"); !errors.Is(err, want) {
		t.Errorf("Create() error = %v", err)
	}
	if r.Len() != 0 {
		t.Error("failed instance stored")
	}
}
