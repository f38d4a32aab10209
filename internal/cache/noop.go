package cache

import "context"

// NoopCache never stores anything. Every lookup is a miss.
type NoopCache struct {
	stats Stats
}

var _ Cache = (*NoopCache)(nil)

// NewNoopCache creates a cache that disables caching.
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(context.Context, string, any) (bool, error) {
	c.stats.misses.Add(1)
	return false, nil
}

func (c *NoopCache) Set(context.Context, string, any) error {
	return nil
}

func (c *NoopCache) InvalidateAll(context.Context) error {
	c.stats.invalidations.Add(1)
	return nil
}

func (c *NoopCache) Version(context.Context) (int64, error) {
	return 0, nil
}

func (c *NoopCache) Stats() StatsSnapshot {
	return c.stats.snapshot(BackendNone)
}
