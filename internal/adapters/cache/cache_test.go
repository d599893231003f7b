package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEntry(key string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Key:       key,
		IsScam:    true,
		Score:     0.83,
		ModelUsed: "keyword-heuristic",
		LastSeen:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(zap.NewNop(), 0)
	defer cache.Stop()

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, cache.Set(ctx, newEntry("abc", time.Hour)))
	entry, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, entry.IsScam)
	assert.Equal(t, 0.83, entry.Score)
	assert.Equal(t, "keyword-heuristic", entry.ModelUsed)

	entry.Score = 0
	again, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 0.83, again.Score, "returned entries must be copies")

	require.NoError(t, cache.Delete(ctx, "abc"))
	_, err = cache.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(zap.NewNop(), 0)
	defer cache.Stop()

	require.NoError(t, cache.Set(ctx, newEntry("old", -time.Minute)))
	require.NoError(t, cache.Set(ctx, newEntry("fresh", time.Hour)))

	_, err := cache.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, cache.Cleanup(ctx))
	assert.Equal(t, 1, cache.Len())
}

func TestMemoryCache_BackgroundCleanup(t *testing.T) {
	cache := NewMemoryCache(zap.NewNop(), 10*time.Millisecond)
	defer cache.Stop()

	require.NoError(t, cache.Set(context.Background(), newEntry("old", -time.Minute)))

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemoryCache_StopTwice(t *testing.T) {
	cache := NewMemoryCache(zap.NewNop(), time.Hour)
	cache.Stop()
	assert.NotPanics(t, cache.Stop)
}

func TestSQLiteCache(t *testing.T) {
	ctx := context.Background()
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), 0)
	require.NoError(t, err)
	defer cache.Stop()

	_, err = cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, cache.Set(ctx, newEntry("abc", time.Hour)))
	entry, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", entry.Key)
	assert.True(t, entry.IsScam)
	assert.Equal(t, 0.83, entry.Score)
	assert.Equal(t, "keyword-heuristic", entry.ModelUsed)

	updated := newEntry("abc", time.Hour)
	updated.IsScam = false
	updated.Score = 0.1
	require.NoError(t, cache.Set(ctx, updated))
	entry, err = cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, entry.IsScam)

	require.NoError(t, cache.Set(ctx, newEntry("old", -time.Minute)))
	_, err = cache.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, cache.Cleanup(ctx))

	require.NoError(t, cache.Delete(ctx, "abc"))
	_, err = cache.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}
