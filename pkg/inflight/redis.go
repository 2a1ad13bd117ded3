package inflight

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Redis is a [Guard] backed by SET NX with an expiry.
type Redis struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis guard. Keys are stored under prefix+"pending:".
// A non-positive ttl falls back to [DefaultTTL].
func NewRedis(client backend.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(k string) string { return r.prefix + "pending:" + k }

func (r *Redis) Acquire(ctx context.Context, key string) (string, error) {
	token := newToken()
	ok, err := r.client.SetNX(ctx, r.key(key), token, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis acquire %s: %w", key, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPending, key)
	}
	return token, nil
}

func (r *Redis) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.key(key)}, token).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Pending(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis pending %s: %w", key, err)
	}
	return n > 0, nil
}

func (r *Redis) Holds(ctx context.Context, key, token string) (bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err == backend.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis holds %s: %w", key, err)
	}
	return v == token, nil
}
