package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"careerhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads key and unmarshals it into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	s, err := rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Fetch loads the value of a missed key into dest. It reports false when the
// result must not be cached.
type Fetch func(ctx context.Context) (cacheable bool, err error)

// ReadThrough is a JSON cache-aside store over Redis. A nil client disables
// caching: every lookup goes to fetch.
type ReadThrough struct {
	rdb *redis.Client
}

// NewReadThrough returns a read-through cache over rdb.
func NewReadThrough(rdb *redis.Client) *ReadThrough {
	return &ReadThrough{rdb: rdb}
}

// Aside serves key from Redis when present. On a miss it calls fetch, which must
// fill dest, and stores dest for ttl when fetch reports it cacheable. Read errors
// are returned; write errors are ignored.
func (r *ReadThrough) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch Fetch) (hit bool, err error) {
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "aside")
	defer func() { observability.EndSpan(span, err) }()

	found, err := GetJSON(ctx, r.rdb, key, dest)
	if err != nil {
		return false, err
	}
	if found {
		return true, nil
	}

	cacheable, err := fetch(ctx)
	if err != nil {
		return false, err
	}
	if cacheable {
		_ = SetJSON(ctx, r.rdb, key, dest, ttl)
	}
	return false, nil
}
