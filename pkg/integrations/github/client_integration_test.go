//go:build integration

package github

import (
	"context"
	"testing"
	"time"

	errs "github.com/matzehuels/ghgraph/pkg/errors"
)

func TestFetch_Integration(t *testing.T) {
	client := NewClient(Options{PerPage: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		name     string
		fullName string
		wantErr  bool
	}{
		{"golang/go", "golang/go", false},
		{"nonexistent", "nonexistent-owner-12345/nonexistent-repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := client.FetchRepo(ctx, tt.fullName)
			if errs.Is(err, errs.ErrCodeRateLimited) {
				t.Skip("unauthenticated rate limit exhausted")
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("FetchRepo(%q) error = %v, wantErr %v", tt.fullName, err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if repo.FullName != tt.fullName {
					t.Errorf("FullName = %q, want %q", repo.FullName, tt.fullName)
				}
				if repo.Watchers <= 0 {
					t.Error("Watchers should be positive")
				}
			}
		})
	}
}

func TestFetchContributors_Integration(t *testing.T) {
	client := NewClient(Options{PerPage: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	list, err := client.FetchContributors(ctx, "golang/go")
	if errs.Is(err, errs.ErrCodeRateLimited) {
		t.Skip("unauthenticated rate limit exhausted")
	}
	if err != nil {
		t.Fatalf("FetchContributors() error: %v", err)
	}
	if len(list) == 0 || len(list) > 5 {
		t.Errorf("got %d contributors, want 1..5", len(list))
	}
}
