package i18n

import (
	"container/list"
	"context"
	"sync"
	"time"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

const (
	DefaultTTL        = 30 * time.Minute
	DefaultMaxEntries = 100
)

// Tier is an optional shared cache consulted on local misses.
type Tier interface {
	Get(ctx context.Context, key string) (Bundle, bool, error)
	Set(ctx context.Context, key string, b Bundle, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	TierHits    uint64 `json:"tierHits"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	Size        int    `json:"size"`
	MaxEntries  int    `json:"maxEntries"`
}

type cacheEntry struct {
	key     string
	bundle  Bundle
	expires time.Time
}

// Cache holds bundles keyed by "namespace:language". Entries expire after
// TTL; once MaxEntries is reached the least recently used entry is evicted.
type Cache struct {
	ttl        time.Duration
	maxEntries int
	tier       Tier
	logger     infralogger.Logger
	now        func() time.Time

	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
	stats Stats
}

// CacheOptions configures NewCache. Zero values pick the defaults.
type CacheOptions struct {
	TTL        time.Duration
	MaxEntries int
	Tier       Tier
	Now        func() time.Time
}

// NewCache builds an empty cache.
func NewCache(opts CacheOptions, log infralogger.Logger) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		tier:       opts.Tier,
		logger:     log,
		now:        opts.Now,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get returns a live entry, consulting the tier on a local miss.
func (c *Cache) Get(ctx context.Context, key string) (Bundle, bool) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*cacheEntry)
		if c.now().Before(e.expires) {
			c.ll.MoveToFront(el)
			c.stats.Hits++
			c.mu.Unlock()
			return e.bundle, true
		}
		c.removeElement(el)
		c.stats.Expirations++
	}
	c.stats.Misses++
	c.mu.Unlock()

	if c.tier == nil {
		return nil, false
	}
	b, ok, err := c.tier.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Translation cache tier read failed",
			infralogger.String("key", key),
			infralogger.Error(err),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	c.mu.Lock()
	c.stats.TierHits++
	c.insert(key, b)
	c.mu.Unlock()
	return b, true
}

// peek returns a live local entry without touching counters or the tier.
func (c *Cache) peek(key string) (Bundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*cacheEntry)
	if !c.now().Before(e.expires) {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return e.bundle, true
}

// Set stores b locally and in the tier.
func (c *Cache) Set(ctx context.Context, key string, b Bundle) {
	c.mu.Lock()
	c.insert(key, b)
	c.mu.Unlock()

	if c.tier != nil {
		if err := c.tier.Set(ctx, key, b, c.ttl); err != nil {
			c.logger.Warn("Translation cache tier write failed",
				infralogger.String("key", key),
				infralogger.Error(err),
			)
		}
	}
}

// Delete removes key locally and from the tier.
func (c *Cache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	c.mu.Unlock()

	if c.tier != nil {
		if err := c.tier.Delete(ctx, key); err != nil {
			c.logger.Warn("Translation cache tier delete failed", infralogger.Error(err))
		}
	}
}

// Clear drops every entry. Counters are kept.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.ll.Init()
	clear(c.items)
	c.mu.Unlock()

	if c.tier != nil {
		if err := c.tier.Clear(ctx); err != nil {
			c.logger.Warn("Translation cache tier clear failed", infralogger.Error(err))
		}
	}
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.ll.Len()
	s.MaxEntries = c.maxEntries
	return s
}

// insert must be called with mu held.
func (c *Cache) insert(key string, b Bundle) {
	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*cacheEntry)
		e.bundle = b
		e.expires = expires
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, bundle: b, expires: expires})
	for c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.stats.Evictions++
	}
}

func (c *Cache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*cacheEntry).key)
}
