package i18n_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/i18n"
)

func newManager(reg *i18n.Registry) *i18n.Manager {
	cache := i18n.NewCache(i18n.CacheOptions{}, infralogger.NewNop())
	return i18n.NewManager(reg, cache, "en", infralogger.NewNop())
}

func TestManager_CoalescesConcurrentLoads(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	reg := i18n.NewRegistry()
	reg.Register("common", "en", func(context.Context) (i18n.Bundle, error) {
		calls.Add(1)
		<-release
		return i18n.Bundle{"hello": "Hello"}, nil
	})
	m := newManager(reg)

	const n = 20
	var wg sync.WaitGroup
	results := make([]i18n.Bundle, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = m.Load(context.Background(), "en", "common")
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, b := range results {
		assert.Equal(t, "Hello", b["hello"])
	}

	m.Load(context.Background(), "en", "common")
	assert.Equal(t, int32(1), calls.Load())
}

func TestManager_FallsBackToDefaultLanguage(t *testing.T) {
	t.Parallel()

	reg := i18n.NewRegistry()
	reg.Register("common", "en", func(context.Context) (i18n.Bundle, error) {
		return i18n.Bundle{"hello": "Hello"}, nil
	})
	reg.Register("common", "es", func(context.Context) (i18n.Bundle, error) {
		return nil, errors.New("broken file")
	})
	m := newManager(reg)

	assert.Equal(t, "Hello", m.Load(context.Background(), "es", "common")["hello"])
	assert.Equal(t, "Hello", m.Load(context.Background(), "fr", "common")["hello"])
}

func TestManager_EmptyBundleWhenNothingLoads(t *testing.T) {
	t.Parallel()

	m := newManager(i18n.NewRegistry())
	b := m.Load(context.Background(), "en", "common")
	assert.NotNil(t, b)
	assert.Empty(t, b)

	_, err := m.LoadStrict(context.Background(), "en", "common")
	require.ErrorIs(t, err, i18n.ErrNotRegistered)
}

func TestRegistry_RegisterFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"en/common.json":     {Data: []byte(`{"hello":"Hello"}`)},
		"en/assessment.json": {Data: []byte(`{"start":"Start"}`)},
		"zh/common.json":     {Data: []byte(`{"hello":"你好"}`)},
		"zh/broken.json":     {Data: []byte(`{`)},
	}
	reg := i18n.NewRegistry()
	n := reg.RegisterFS(fsys, []string{"en", "zh"}, []string{"common", "assessment", "broken"})

	assert.Equal(t, 4, n)
	assert.True(t, reg.Has("assessment", "en"))
	assert.False(t, reg.Has("assessment", "zh"))
	assert.Equal(t, []string{"assessment:en", "broken:zh", "common:en", "common:zh"}, reg.Keys())

	m := newManager(reg)
	assert.Equal(t, "你好", m.Load(context.Background(), "zh", "common")["hello"])

	_, err := m.LoadStrict(context.Background(), "zh", "broken")
	require.Error(t, err)
}

func TestManager_Preload(t *testing.T) {
	t.Parallel()

	reg := i18n.NewRegistry()
	for _, ns := range []string{"common", "assessment"} {
		reg.Register(ns, "en", func(context.Context) (i18n.Bundle, error) {
			return i18n.Bundle{"ns": ns}, nil
		})
	}
	m := newManager(reg)
	m.Preload(context.Background(), "en", "common", "assessment")

	assert.Equal(t, 2, m.Cache().Stats().Size)
}

func TestManager_ColdLoadCountsOneMiss(t *testing.T) {
	t.Parallel()

	reg := i18n.NewRegistry()
	reg.Register("common", "en", func(context.Context) (i18n.Bundle, error) {
		return i18n.Bundle{"hello": "Hello"}, nil
	})
	cache := i18n.NewCache(i18n.CacheOptions{}, infralogger.NewNop())
	m := i18n.NewManager(reg, cache, "en", infralogger.NewNop())

	m.Load(context.Background(), "en", "common")
	stats := cache.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)

	m.Load(context.Background(), "en", "common")
	stats = cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestManager_TierHitSkipsLoader(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	tier := i18n.NewRedisTier(client, "sunrain:i18n")
	warm := i18n.NewCache(i18n.CacheOptions{Tier: tier}, infralogger.NewNop())
	warm.Set(ctx, i18n.CacheKey("common", "en"), i18n.Bundle{"hello": "Hello"})

	var calls atomic.Int32
	reg := i18n.NewRegistry()
	reg.Register("common", "en", func(context.Context) (i18n.Bundle, error) {
		calls.Add(1)
		return i18n.Bundle{"hello": "Hello"}, nil
	})
	cache := i18n.NewCache(i18n.CacheOptions{Tier: tier}, infralogger.NewNop())
	m := i18n.NewManager(reg, cache, "en", infralogger.NewNop())

	b := m.Load(ctx, "en", "common")
	assert.Equal(t, "Hello", b["hello"])
	assert.Equal(t, int32(0), calls.Load())

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.TierHits)
}
