package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "voxpopuly:stats"

// StatsCache caches election statistics in Redis under versioned keys.
// Bumping the version of an election makes every cached payload for it
// unreachable; stale entries expire with the TTL. A nil cache or a cache
// without client always calls the loader.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache instantiates the cache helper
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and verifies the server answers
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Enabled reports whether a Redis client backs the cache
func (c *StatsCache) Enabled() bool {
	return c != nil && c.client != nil
}

func versionKey(electionID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:version", keyPrefix, electionID)
}

// Version returns the current version of an election, initialising it
func (c *StatsCache) Version(ctx context.Context, electionID uuid.UUID) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	key := versionKey(electionID)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key of a payload with the current version
func (c *StatsCache) BuildKey(ctx context.Context, electionID uuid.UUID, name string) (string, error) {
	ver, err := c.Version(ctx, electionID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:%s:%d", keyPrefix, electionID, name, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader
func (c *StatsCache) FetchJSON(ctx context.Context, electionID uuid.UUID, name string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if !c.Enabled() {
		return load(ctx, dest, loader)
	}

	key, err := c.BuildKey(ctx, electionID, name)
	if err != nil {
		return load(ctx, dest, loader)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return load(ctx, dest, loader)
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	// A failed write only costs a recomputation on the next read
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	return json.Unmarshal(raw, dest)
}

func load(ctx context.Context, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached payload of an election
func (c *StatsCache) Bump(ctx context.Context, electionID uuid.UUID) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Incr(ctx, versionKey(electionID)).Err()
}
