// Package cache provides the listing cache used by the task service.
//
// Entries are namespaced by a generation number. InvalidateAll bumps the
// generation, so every key built from an older generation becomes
// unreachable at once, even on backends that cannot enumerate their keys
// cheaply.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Backend names reported in stats.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Cache is a best-effort key/value cache with coarse invalidation.
type Cache interface {
	// Get unmarshals the value stored at key into dest.
	// Returns true on a hit; a miss is not an error.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value at key with the cache's default TTL.
	Set(ctx context.Context, key string, value any) error

	// InvalidateAll makes every previously stored entry unreachable.
	InvalidateAll(ctx context.Context) error

	// Version returns the current generation. Keys should embed it.
	Version(ctx context.Context) (int64, error)

	// Stats returns a snapshot of the cache counters.
	Stats() StatsSnapshot
}

// ListingKey builds the cache key for one page of an owner's task listing.
func ListingKey(version int64, owner uuid.UUID, page, perPage int, done *bool) string {
	filter := "all"
	if done != nil {
		filter = strconv.FormatBool(*done)
	}
	return fmt.Sprintf("v%d:tasks:%s:page=%d:per_page=%d:done=%s", version, owner, page, perPage, filter)
}

// Stats tracks cache statistics.
type Stats struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	sets          atomic.Uint64
	invalidations atomic.Uint64
	evictions     atomic.Uint64
	errors        atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Backend       string  `json:"backend"`
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Sets          uint64  `json:"sets"`
	Invalidations uint64  `json:"invalidations"`
	Evictions     uint64  `json:"evictions"`
	Errors        uint64  `json:"errors"`
	TotalGets     uint64  `json:"total_gets"`
	HitRate       float64 `json:"hit_rate"`
}

func (s *Stats) snapshot(backend string) StatsSnapshot {
	hits := s.hits.Load()
	misses := s.misses.Load()
	totalGets := hits + misses

	var hitRate float64
	if totalGets > 0 {
		hitRate = float64(hits) / float64(totalGets) * 100
	}

	return StatsSnapshot{
		Backend:       backend,
		Hits:          hits,
		Misses:        misses,
		Sets:          s.sets.Load(),
		Invalidations: s.invalidations.Load(),
		Evictions:     s.evictions.Load(),
		Errors:        s.errors.Load(),
		TotalGets:     totalGets,
		HitRate:       hitRate,
	}
}
