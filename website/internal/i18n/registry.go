package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sync"
)

// ErrNotRegistered is returned for namespace/language pairs without a loader.
var ErrNotRegistered = errors.New("translation not registered")

// Loader produces a bundle.
type Loader func(ctx context.Context) (Bundle, error)

// Registry is the table of loadable bundles. Only registered pairs can be
// loaded; nothing is discovered at request time.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register adds or replaces the loader for namespace in language.
func (r *Registry) Register(namespace, language string, l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[CacheKey(namespace, language)] = l
}

// Loader returns the loader for namespace in language.
func (r *Registry) Loader(namespace, language string) (Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[CacheKey(namespace, language)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotRegistered, language, namespace)
	}
	return l, nil
}

// Has reports whether namespace in language is registered.
func (r *Registry) Has(namespace, language string) bool {
	_, err := r.Loader(namespace, language)
	return err == nil
}

// Keys lists registered "namespace:language" pairs.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.loaders))
	for k := range r.loaders {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RegisterFS registers "<lang>/<namespace>.json" for every listed language
// and namespace present in fsys. It returns how many pairs were registered.
func (r *Registry) RegisterFS(fsys fs.FS, languages, namespaces []string) int {
	n := 0
	for _, lang := range languages {
		for _, ns := range namespaces {
			file := path.Join(lang, ns+".json")
			if _, err := fs.Stat(fsys, file); err != nil {
				continue
			}
			r.Register(ns, lang, fileLoader(fsys, file))
			n++
		}
	}
	return n
}

func fileLoader(fsys fs.FS, file string) Loader {
	return func(context.Context) (Bundle, error) {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		var b Bundle
		if err = json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("decode %s: %w", file, err)
		}
		return b, nil
	}
}
