// Package ratelimit throttles requests per client key. A Redis sliding
// window is used when Redis is configured so limits hold across instances;
// otherwise an in-process token bucket applies per instance.
package ratelimit

import (
	"context"
	"time"
)

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

// RetryAfter returns how long the caller should wait before retrying.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}
