package i18n_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/i18n"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestCache_TTLExpiry(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := i18n.NewCache(i18n.CacheOptions{TTL: time.Minute, Now: clock.Now}, infralogger.NewNop())
	ctx := context.Background()

	c.Set(ctx, "common:en", i18n.Bundle{"hello": "Hello"})

	_, ok := c.Get(ctx, "common:en")
	assert.True(t, ok)

	clock.t = clock.t.Add(time.Minute)
	_, ok = c.Get(ctx, "common:en")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Expirations)
	assert.Equal(t, 0, stats.Size)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := i18n.NewCache(i18n.CacheOptions{MaxEntries: 2}, infralogger.NewNop())
	ctx := context.Background()

	c.Set(ctx, "a", i18n.Bundle{})
	c.Set(ctx, "b", i18n.Bundle{})
	_, _ = c.Get(ctx, "a")
	c.Set(ctx, "c", i18n.Bundle{})

	_, okA := c.Get(ctx, "a")
	_, okB := c.Get(ctx, "b")
	_, okC := c.Get(ctx, "c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Evictions)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.MaxEntries)
}

func TestCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	c := i18n.NewCache(i18n.CacheOptions{}, infralogger.NewNop())
	ctx := context.Background()

	c.Set(ctx, "a", i18n.Bundle{})
	c.Set(ctx, "b", i18n.Bundle{})
	c.Delete(ctx, "a")
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	c.Clear(ctx)
	assert.Equal(t, 0, c.Stats().Size)
}

func TestCache_RedisTierSharesBundles(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	tier := i18n.NewRedisTier(client, "sunrain:i18n")

	first := i18n.NewCache(i18n.CacheOptions{Tier: tier}, infralogger.NewNop())
	first.Set(ctx, "common:en", i18n.Bundle{"nav": map[string]any{"home": "Home"}})
	assert.True(t, mr.Exists("sunrain:i18n:common:en"))

	second := i18n.NewCache(i18n.CacheOptions{Tier: tier}, infralogger.NewNop())
	b, ok := second.Get(ctx, "common:en")
	require.True(t, ok)
	s, ok := b.Lookup("nav.home")
	require.True(t, ok)
	assert.Equal(t, "Home", s)
	assert.Equal(t, uint64(1), second.Stats().TierHits)

	second.Clear(ctx)
	assert.False(t, mr.Exists("sunrain:i18n:common:en"))
}

func TestBundle_Lookup(t *testing.T) {
	t.Parallel()

	b := i18n.Bundle{
		"title": "Sunrain",
		"nav":   i18n.Bundle{"home": "Home"},
		"deep":  map[string]any{"a": map[string]any{"b": "leaf"}},
	}

	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"title", "Sunrain", true},
		{"nav.home", "Home", true},
		{"deep.a.b", "leaf", true},
		{"deep.a", "", false},
		{"missing", "", false},
		{"title.more", "", false},
	}
	for _, tt := range tests {
		got, ok := b.Lookup(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}
}
