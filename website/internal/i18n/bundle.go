// Package i18n loads translation bundles through a TTL/LRU cache.
package i18n

import "strings"

// Bundle is one decoded namespace file: nested objects of strings.
type Bundle map[string]any

// Lookup resolves a dotted key such as "result.mild.label".
func (b Bundle) Lookup(key string) (string, bool) {
	var node any = map[string]any(b)
	for part := range strings.SplitSeq(key, ".") {
		var m map[string]any
		switch v := node.(type) {
		case map[string]any:
			m = v
		case Bundle:
			m = v
		default:
			return "", false
		}
		next, ok := m[part]
		if !ok {
			return "", false
		}
		node = next
	}
	s, ok := node.(string)
	return s, ok
}

// CacheKey is the cache key of a namespace in a language.
func CacheKey(namespace, language string) string {
	return namespace + ":" + language
}
