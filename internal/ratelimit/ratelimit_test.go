package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiter(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLocalLimiter(60, 2)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	second, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, second.Allowed)

	third, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, third.Allowed, "burst exhausted")
	assert.Equal(t, 0, third.Remaining)
	assert.Equal(t, time.Second, third.RetryAfter(now))

	other, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are limited independently")

	now = now.Add(time.Second)
	refilled, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, refilled.Allowed, "one token refills per second at 60/min")
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Now()
	l := NewRedisLimiter(client, "ratelimit:", 2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	r1, err := l.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, r1.Allowed)
	assert.Equal(t, 1, r1.Remaining)
	assert.Equal(t, 2, r1.Limit)

	now = now.Add(time.Millisecond)
	r2, err := l.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, r2.Allowed)
	assert.Equal(t, 0, r2.Remaining)

	now = now.Add(time.Millisecond)
	r3, err := l.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, r3.Allowed)
	assert.Positive(t, r3.RetryAfter(now))
	assert.True(t, mr.Exists("ratelimit:login:10.0.0.1"))

	now = now.Add(time.Minute + time.Second)
	r4, err := l.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, r4.Allowed, "window slides past the old requests")
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	l := NewRedisLimiter(client, "ratelimit:", 2, time.Minute)
	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}
