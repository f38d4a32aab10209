package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const generationKey = "generation"

// RedisCache stores entries in Redis under a shared prefix.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	stats  Stats
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.stats.misses.Add(1)
			return false, nil
		}
		c.stats.errors.Add(1)
		return false, fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.stats.errors.Add(1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.stats.hits.Add(1)
	return true, nil
}

// Set stores a value in the cache with the default TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.stats.errors.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.stats.errors.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}

	c.stats.sets.Add(1)
	return nil
}

// InvalidateAll bumps the generation counter. Entries from older generations
// are never read again and age out through their TTL.
func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.prefix+generationKey).Err(); err != nil {
		c.stats.errors.Add(1)
		return fmt.Errorf("cache invalidate error: %w", err)
	}

	c.stats.invalidations.Add(1)
	return nil
}

// Version returns the current generation; zero before the first invalidation.
func (c *RedisCache) Version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, c.prefix+generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		c.stats.errors.Add(1)
		return 0, fmt.Errorf("cache version error: %w", err)
	}
	return v, nil
}

// Stats returns the current cache statistics.
func (c *RedisCache) Stats() StatsSnapshot {
	return c.stats.snapshot(BackendRedis)
}

// Ping checks if the Redis connection is healthy.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
