package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
	now      func() time.Time
}

var _ Limiter = (*LocalLimiter)(nil)

// NewLocalLimiter refills requestsPerMinute tokens per minute up to burst.
func NewLocalLimiter(requestsPerMinute, burst int) *LocalLimiter {
	return &LocalLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *LocalLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Allow implements Limiter.Allow
func (l *LocalLimiter) Allow(_ context.Context, key string) (*Result, error) {
	lim := l.limiterFor(key)
	now := l.now()

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)

	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	resetAt := now
	if tokens < 1 {
		wait := time.Duration((1 - tokens) / float64(l.every) * float64(time.Second))
		resetAt = now.Add(wait)
	}

	return &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   resetAt,
		Limit:     l.burst,
	}, nil
}
