package inflight

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is an in-process [Guard].
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	marks map[string]mark
	now   func() time.Time
}

type mark struct {
	token   string
	expires time.Time
}

// NewMemory creates a Memory guard. A non-positive ttl keeps marks until
// they are released.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, marks: make(map[string]mark), now: time.Now}
}

func (m *Memory) live(key string) (mark, bool) {
	mk, ok := m.marks[key]
	if ok && !mk.expires.IsZero() && m.now().After(mk.expires) {
		delete(m.marks, key)
		return mark{}, false
	}
	return mk, ok
}

func (m *Memory) Acquire(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); ok {
		return "", fmt.Errorf("%w: %s", ErrPending, key)
	}
	mk := mark{token: newToken()}
	if m.ttl > 0 {
		mk.expires = m.now().Add(m.ttl)
	}
	m.marks[key] = mk
	return mk.token, nil
}

func (m *Memory) Release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mk, ok := m.marks[key]; ok && mk.token == token {
		delete(m.marks, key)
	}
	return nil
}

func (m *Memory) Pending(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live(key)
	return ok, nil
}

func (m *Memory) Holds(_ context.Context, key, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mk, ok := m.live(key)
	return ok && mk.token == token, nil
}
