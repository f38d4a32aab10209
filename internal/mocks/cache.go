package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/tasks-api/internal/cache"
)

// MockCache implements cache.Cache for testing failure paths.
// Unset functions behave like an always-missing cache at generation 0.
type MockCache struct {
	GetFn           func(ctx context.Context, key string, dest any) (bool, error)
	SetFn           func(ctx context.Context, key string, value any) error
	InvalidateAllFn func(ctx context.Context) error
	VersionFn       func(ctx context.Context) (int64, error)

	mu                 sync.Mutex
	SetKeys            []string
	InvalidationsCount int
}

var _ cache.Cache = (*MockCache)(nil)

// Get implements cache.Cache.Get
func (m *MockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key, dest)
	}
	return false, nil
}

// Set implements cache.Cache.Set
func (m *MockCache) Set(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	m.SetKeys = append(m.SetKeys, key)
	m.mu.Unlock()

	if m.SetFn != nil {
		return m.SetFn(ctx, key, value)
	}
	return nil
}

// InvalidateAll implements cache.Cache.InvalidateAll
func (m *MockCache) InvalidateAll(ctx context.Context) error {
	m.mu.Lock()
	m.InvalidationsCount++
	m.mu.Unlock()

	if m.InvalidateAllFn != nil {
		return m.InvalidateAllFn(ctx)
	}
	return nil
}

// Version implements cache.Cache.Version
func (m *MockCache) Version(ctx context.Context) (int64, error) {
	if m.VersionFn != nil {
		return m.VersionFn(ctx)
	}
	return 0, nil
}

// Stats implements cache.Cache.Stats
func (m *MockCache) Stats() cache.StatsSnapshot {
	return cache.StatsSnapshot{Backend: "mock"}
}

// Invalidations returns the number of InvalidateAll calls.
func (m *MockCache) Invalidations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.InvalidationsCount
}
