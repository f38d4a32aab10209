package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// DefaultMaxEntries bounds a MemoryCache built with a non-positive capacity.
const DefaultMaxEntries = 10000

// MemoryCache is an in-process cache for single-instance deployments and tests.
// Values are stored JSON-encoded so callers never share memory with the cache.
// It never holds more than its configured number of entries: a Set at capacity
// first drops expired entries and then the entry closest to expiry.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	generation int64
	ttl        time.Duration
	now        func() time.Time
	stats      Stats
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an in-process cache whose entries live for ttl and
// which holds at most maxEntries listings.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests to expire entries.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get implements Cache.Get
func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		c.stats.misses.Add(1)
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		c.stats.errors.Add(1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.stats.hits.Add(1)
	return true, nil
}

// Set implements Cache.Set
func (c *MemoryCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.stats.errors.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	c.mu.Lock()
	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.makeRoom(now)
	}
	c.entries[key] = memoryEntry{data: data, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()

	c.stats.sets.Add(1)
	return nil
}

// makeRoom frees at least one slot. Callers must hold c.mu.
func (c *MemoryCache) makeRoom(now time.Time) {
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var (
		victim   string
		earliest time.Time
	)
	for key, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(earliest) {
			victim, earliest = key, entry.expiresAt
		}
	}
	delete(c.entries, victim)
	c.stats.evictions.Add(1)
}

// InvalidateAll drops every entry and advances the generation.
func (c *MemoryCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.generation++
	c.mu.Unlock()

	c.stats.invalidations.Add(1)
	return nil
}

// Version implements Cache.Version
func (c *MemoryCache) Version(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats implements Cache.Stats
func (c *MemoryCache) Stats() StatsSnapshot {
	return c.stats.snapshot(BackendMemory)
}
