// Package session keeps the graph instances of a running server.
//
// Each instance is an independent [controller.Controller] identified by a
// random UUID. Instances expire after a period without use; expired ones
// are evicted by [Registry.Cleanup] or when they are next looked up.
//
// # Usage
//
//	reg := session.NewRegistry(factory, session.DefaultTTL, session.DefaultMaxInstances)
//
//	sess, err := reg.Create(ctx, "mbostock/d3")
//	if err != nil {
//	    return err
//	}
//
//	sess, err = reg.Get(sess.ID)
//	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
//	    // Ask the client to start over
//	}
//
// Nothing is persisted: instances live as long as the process.
//
// [controller.Controller]: github.com/matzehuels/ghgraph/pkg/controller.Controller
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/ghgraph/pkg/controller"
)

// Sentinel errors for registry operations.
var (
	// ErrNotFound is returned when an instance does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when an instance has exceeded its TTL.
	ErrExpired = errors.New("expired")

	// ErrFull is returned when the registry holds its maximum number of
	// live instances.
	ErrFull = errors.New("too many graph instances")
)

// Default limits.
const (
	// DefaultTTL is how long an instance survives without being used.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxInstances bounds the number of live instances.
	DefaultMaxInstances = 64
)

// Session is one graph instance.
type Session struct {
	ID         string
	Repo       string
	Controller *controller.Controller
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// IsExpired returns true if the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Factory builds the controller of a new instance.
type Factory func(ctx context.Context, id, repo string) (*controller.Controller, error)

// Registry stores graph instances in memory.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewRegistry creates an empty registry. Non-positive ttl and max fall back
// to [DefaultTTL] and [DefaultMaxInstances].
func NewRegistry(factory Factory, ttl time.Duration, max int) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if max <= 0 {
		max = DefaultMaxInstances
	}
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

// Create builds a new instance rooted at repo. The controller is built
// without the registry lock held, since it loads the root remotely.
func (r *Registry) Create(ctx context.Context, repo string) (*Session, error) {
	r.mu.Lock()
	r.cleanupLocked()
	full := len(r.sessions) >= r.max
	r.mu.Unlock()
	if full {
		return nil, fmt.Errorf("%w (max %d)", ErrFull, r.max)
	}

	id := uuid.NewString()
	c, err := r.factory(ctx, id, repo)
	if err != nil {
		return nil, err
	}

	now := r.now()
	s := &Session{
		ID:         id,
		Repo:       repo,
		Controller: c,
		CreatedAt:  now,
		ExpiresAt:  now.Add(r.ttl),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.max {
		return nil, fmt.Errorf("%w (max %d)", ErrFull, r.max)
	}
	r.sessions[id] = s
	return s, nil
}

// Get returns the instance with the given id and extends its lifetime.
// An expired instance is removed and reported as [ErrExpired].
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := r.now()
	if s.IsExpired(now) {
		delete(r.sessions, id)
		return nil, ErrExpired
	}
	s.ExpiresAt = now.Add(r.ttl)
	return s, nil
}

// Delete removes an instance. Deleting an unknown id is not an error.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Cleanup removes expired instances and returns how many were removed.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleanupLocked()
}

func (r *Registry) cleanupLocked() int {
	now := r.now()
	n := 0
	for id, s := range r.sessions {
		if s.IsExpired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// List returns the live instances, oldest first.
func (r *Registry) List() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if !s.IsExpired(now) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of stored instances, expired ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// RunCleanup calls [Registry.Cleanup] every interval until ctx is done.
func (r *Registry) RunCleanup(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Cleanup()
		}
	}
}
