// Package cache keeps a read-through copy of event records in Redis.
// Redis is never the record of truth: availability checks always go to the
// store under its lock, and the cache only serves public event reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "event:"
	genSuffix = ":gen"
)

// setIfCurrentScript writes the event only while its invalidation counter
// still holds the value the reader saw before loading from the store.
// KEYS[1] event key, KEYS[2] generation key.
// ARGV[1] payload, ARGV[2] ttl in milliseconds, ARGV[3] expected generation.
const setIfCurrentScript = `
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[3] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`

// EventCache stores serialized events keyed by id.
type EventCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewEventCache constructs an EventCache whose entries expire after ttl.
func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{redis: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

func genKey(id string) string {
	return keyPrefix + id + genSuffix
}

// Get returns the cached event, or nil without error on a miss.
func (c *EventCache) Get(ctx context.Context, id string) (*model.Event, error) {
	raw, err := c.redis.Get(ctx, key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", id, err)
	}

	var e model.Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", id, err)
	}
	return &e, nil
}

// Generation returns the invalidation counter of an event. Read it before
// loading the event from the store and hand it back to Set.
func (c *EventCache) Generation(ctx context.Context, id string) (int64, error) {
	gen, err := c.redis.Get(ctx, genKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("cache generation %s: %w", id, err)
	}
	return gen, nil
}

// Set stores e until the TTL elapses, unless the event was invalidated after
// generation was read. It reports whether the entry was written.
func (c *EventCache) Set(ctx context.Context, e *model.Event, generation int64) (bool, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("cache encode %s: %w", e.ID, err)
	}
	written, err := c.redis.Eval(ctx, setIfCurrentScript,
		[]string{key(e.ID), genKey(e.ID)},
		string(raw), c.ttl.Milliseconds(), strconv.FormatInt(generation, 10),
	).Int()
	if err != nil {
		return false, fmt.Errorf("cache set %s: %w", e.ID, err)
	}
	return written == 1, nil
}

// Invalidate drops the given events from the cache. The generation counters
// are bumped before the entries are deleted, so a reader that loaded an event
// before the change can no longer write it back.
func (c *EventCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		if err := c.redis.Incr(ctx, genKey(id)).Err(); err != nil {
			return fmt.Errorf("cache invalidate %s: %w", id, err)
		}
		keys[i] = key(id)
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *EventCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// NewRedisClient builds a pooled client from a redis:// URL or a bare
// host:port address.
func NewRedisClient(url string) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3
	return redis.NewClient(opts)
}

// Nop is an event cache that stores nothing. It is used when REDIS_URL is unset.
type Nop struct{}

func (Nop) Get(context.Context, string) (*model.Event, error)      { return nil, nil }
func (Nop) Generation(context.Context, string) (int64, error)      { return 0, nil }
func (Nop) Set(context.Context, *model.Event, int64) (bool, error) { return false, nil }
func (Nop) Invalidate(context.Context, ...string) error            { return nil }
func (Nop) Ping(context.Context) error                             { return nil }
