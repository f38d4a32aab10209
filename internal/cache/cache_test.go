package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	IDs   []int64 `json:"ids"`
	Total int64   `json:"total"`
}

func TestListingKey(t *testing.T) {
	t.Parallel()

	owner := uuid.MustParse("6f1c1c39-4a8b-4b0e-9a51-0a3c8cf9b4f1")
	done := true
	notDone := false

	tests := []struct {
		name    string
		version int64
		done    *bool
		want    string
	}{
		{
			name: "no filter",
			want: "v0:tasks:6f1c1c39-4a8b-4b0e-9a51-0a3c8cf9b4f1:page=2:per_page=5:done=all",
		},
		{
			name:    "done filter",
			version: 3,
			done:    &done,
			want:    "v3:tasks:6f1c1c39-4a8b-4b0e-9a51-0a3c8cf9b4f1:page=2:per_page=5:done=true",
		},
		{
			name: "open filter",
			done: &notDone,
			want: "v0:tasks:6f1c1c39-4a8b-4b0e-9a51-0a3c8cf9b4f1:page=2:per_page=5:done=false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cache.ListingKey(tt.version, owner, 2, 5, tt.done))
		})
	}

	assert.NotEqual(t,
		cache.ListingKey(0, owner, 1, 5, nil),
		cache.ListingKey(0, uuid.New(), 1, 5, nil),
		"different owners never share a key")
}

func TestMemoryCache_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemoryCache(time.Minute, 0)

	var got page
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", page{IDs: []int64{1, 2}, Total: 2}))

	hit, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, page{IDs: []int64{1, 2}, Total: 2}, got)

	stats := c.Stats()
	assert.Equal(t, cache.BackendMemory, stats.Backend)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Sets)
	assert.InDelta(t, 50.0, stats.HitRate, 0.001)
}

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.NewMemoryCache(60*time.Second, 0).WithClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", page{Total: 1}))

	now = now.Add(59 * time.Second)
	var got page
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)

	now = now.Add(time.Second)
	hit, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit, "entry expires after its TTL")
	assert.Zero(t, c.Len())
}

func TestMemoryCache_Bounded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.NewMemoryCache(time.Minute, 3).WithClock(func() time.Time { return now })

	tests := []struct {
		name        string
		advance     time.Duration
		keys        []string
		wantLen     int
		wantPresent []string
		wantAbsent  []string
	}{
		{
			name:        "fills to capacity",
			keys:        []string{"a", "b", "c"},
			wantLen:     3,
			wantPresent: []string{"a", "b", "c"},
		},
		{
			name:        "overwrite at capacity evicts nothing",
			keys:        []string{"c"},
			wantLen:     3,
			wantPresent: []string{"a", "b", "c"},
		},
		{
			name:        "distinct keys evict the entry closest to expiry",
			advance:     time.Second,
			keys:        []string{"d", "e"},
			wantLen:     3,
			wantPresent: []string{"c", "d", "e"},
			wantAbsent:  []string{"a", "b"},
		},
		{
			name:        "expired entries are swept before live ones",
			advance:     time.Minute,
			keys:        []string{"f"},
			wantLen:     1,
			wantPresent: []string{"f"},
			wantAbsent:  []string{"c", "d", "e"},
		},
	}

	for _, tt := range tests {
		now = now.Add(tt.advance)
		for _, key := range tt.keys {
			now = now.Add(time.Second)
			require.NoError(t, c.Set(ctx, key, page{Total: 1}), tt.name)
		}
		assert.Equal(t, tt.wantLen, c.Len(), tt.name)

		for _, key := range tt.wantPresent {
			var got page
			hit, err := c.Get(ctx, key, &got)
			require.NoError(t, err)
			assert.True(t, hit, "%s: %s should be cached", tt.name, key)
		}
		for _, key := range tt.wantAbsent {
			var got page
			hit, err := c.Get(ctx, key, &got)
			require.NoError(t, err)
			assert.False(t, hit, "%s: %s should be gone", tt.name, key)
		}
	}

	assert.Equal(t, uint64(2), c.Stats().Evictions)
}

func TestMemoryCache_DistinctKeysStayBounded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemoryCache(time.Hour, 50)
	owner := uuid.New()

	for n := 1; n <= 1000; n++ {
		require.NoError(t, c.Set(ctx, cache.ListingKey(0, owner, n, 20, nil), page{Total: int64(n)}))
	}

	assert.Equal(t, 50, c.Len())
	assert.Equal(t, uint64(950), c.Stats().Evictions)
}

func TestMemoryCache_InvalidateAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemoryCache(time.Minute, 0)

	v0, err := c.Version(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))
	require.NoError(t, c.InvalidateAll(ctx))

	v1, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Greater(t, v1, v0)
	assert.Zero(t, c.Len())

	var n int
	hit, err := c.Get(ctx, "a", &n)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, uint64(1), c.Stats().Invalidations)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemoryCache(time.Minute, 0)

	original := page{IDs: []int64{1}}
	require.NoError(t, c.Set(ctx, "k", original))
	original.IDs[0] = 99

	var got page
	_, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, got.IDs)
}

func TestNoopCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewNoopCache()

	require.NoError(t, c.Set(ctx, "k", 1))
	var n int
	hit, err := c.Get(ctx, "k", &n)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, c.InvalidateAll(ctx))

	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.Equal(t, cache.BackendNone, c.Stats().Backend)
	assert.Equal(t, uint64(1), c.Stats().Misses)
}
