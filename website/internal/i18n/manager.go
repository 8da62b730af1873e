package i18n

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

// Manager loads bundles through the cache, collapsing concurrent loads of
// the same key into one loader call.
type Manager struct {
	registry    *Registry
	cache       *Cache
	defaultLang string
	logger      infralogger.Logger
	group       singleflight.Group
}

// NewManager wires a registry to a cache.
func NewManager(registry *Registry, cache *Cache, defaultLang string, log infralogger.Logger) *Manager {
	return &Manager{registry: registry, cache: cache, defaultLang: defaultLang, logger: log}
}

// DefaultLanguage is the fallback language.
func (m *Manager) DefaultLanguage() string {
	return m.defaultLang
}

// Registry exposes the loader table.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Cache exposes the bundle cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Load returns namespace in language. When that fails it falls back to the
// default language, and when that fails too it returns an empty bundle.
func (m *Manager) Load(ctx context.Context, language, namespace string) Bundle {
	b, err := m.load(ctx, language, namespace)
	if err == nil {
		return b
	}

	if language != m.defaultLang {
		m.logger.Debug("Translation unavailable, using default language",
			infralogger.String("language", language),
			infralogger.String("namespace", namespace),
			infralogger.Error(err),
		)
		if b, err = m.load(ctx, m.defaultLang, namespace); err == nil {
			return b
		}
	}

	m.logger.Warn("Translation load failed, serving empty bundle",
		infralogger.String("language", language),
		infralogger.String("namespace", namespace),
		infralogger.Error(err),
	)
	return Bundle{}
}

// LoadStrict is Load without fallback.
func (m *Manager) LoadStrict(ctx context.Context, language, namespace string) (Bundle, error) {
	return m.load(ctx, language, namespace)
}

func (m *Manager) load(ctx context.Context, language, namespace string) (Bundle, error) {
	key := CacheKey(namespace, language)
	if b, ok := m.cache.Get(ctx, key); ok {
		return b, nil
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		// A concurrent flight may have filled the cache since the miss above.
		if b, ok := m.cache.peek(key); ok {
			return b, nil
		}
		loader, err := m.registry.Loader(namespace, language)
		if err != nil {
			return nil, err
		}
		b, err := loader(ctx)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		m.cache.Set(ctx, key, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Bundle), nil
}

// Preload warms the cache for namespaces in language.
func (m *Manager) Preload(ctx context.Context, language string, namespaces ...string) {
	for _, ns := range namespaces {
		m.Load(ctx, language, ns)
	}
}

// Translator returns a Translator for language bound to ctx.
func (m *Manager) Translator(ctx context.Context, language, defaultNamespace string) *Translator {
	return &Translator{ctx: ctx, manager: m, language: language, namespace: defaultNamespace}
}
