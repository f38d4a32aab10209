package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/tasks-api/internal/cache"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/ratelimit"
	"github.com/redis/go-redis/v9"
)

// setupCache builds the listing cache and the auth rate limiter. Both share
// one Redis client when the redis driver is configured; the returned client
// is nil otherwise.
func setupCache(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (cache.Cache, ratelimit.Limiter, redis.UniversalClient) {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	switch cfg.Cache.Driver {
	case cache.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// The cache is best-effort; requests fall back to the store.
			logger.Warn("redis unreachable at startup",
				slog.String("addr", cfg.Cache.RedisAddr),
				slog.String("error", err.Error()))
		} else {
			logger.Info("redis connection established", slog.String("addr", cfg.Cache.RedisAddr))
		}

		limiter := ratelimit.NewRedisLimiter(client, cfg.Cache.Prefix+"ratelimit:",
			cfg.RateLimit.RequestsPerMinute, time.Minute)
		return cache.NewRedisCache(client, cfg.Cache.Prefix, ttl), limiter, client

	case cache.BackendNone:
		return cache.NewNoopCache(), localLimiter(cfg), nil

	default:
		return cache.NewMemoryCache(ttl, cfg.Cache.MaxEntries), localLimiter(cfg), nil
	}
}

func localLimiter(cfg *config.Config) ratelimit.Limiter {
	return ratelimit.NewLocalLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
}
