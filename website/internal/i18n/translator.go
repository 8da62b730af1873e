package i18n

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Translator resolves keys for one language. Keys are "namespace:dotted.key";
// a key without a namespace uses the translator's default namespace.
type Translator struct {
	ctx       context.Context //nolint:containedctx // bound to a single request
	manager   *Manager
	language  string
	namespace string
}

// Language is the requested language.
func (t *Translator) Language() string {
	return t.language
}

// T looks key up in the requested language, then the default language,
// and returns the key itself when neither has it. vars fill {{name}}
// placeholders.
func (t *Translator) T(key string, vars map[string]any) string {
	ns, path := t.split(key)

	s, ok := t.lookup(t.language, ns, path)
	if !ok && t.language != t.manager.defaultLang {
		s, ok = t.lookup(t.manager.defaultLang, ns, path)
	}
	if !ok {
		return key
	}
	return Interpolate(s, vars)
}

// In returns a function translating keys of namespace, for use as a
// questionnaire localizer.
func (t *Translator) In(namespace string) func(string) string {
	return func(key string) string {
		return t.T(namespace+":"+key, nil)
	}
}

func (t *Translator) split(key string) (string, string) {
	if ns, path, ok := strings.Cut(key, ":"); ok {
		return ns, path
	}
	return t.namespace, key
}

func (t *Translator) lookup(language, namespace, path string) (string, bool) {
	b, err := t.manager.load(t.ctx, language, namespace)
	if err != nil {
		return "", false
	}
	return b.Lookup(path)
}

// Interpolate replaces {{name}} with vars[name]. Unknown names are left as is.
func Interpolate(s string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := vars[name]
		if !ok {
			return m
		}
		return fmt.Sprint(v)
	})
}

// Placeholders returns the distinct placeholder names in s.
func Placeholders(s string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
