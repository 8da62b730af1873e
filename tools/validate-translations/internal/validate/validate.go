// Package validate compares translation bundles against a base language.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind classifies an issue.
type Kind string

const (
	KindMissingNamespace    Kind = "missing_namespace"
	KindMissingKey          Kind = "missing_key"
	KindExtraKey            Kind = "extra_key"
	KindEmptyValue          Kind = "empty_value"
	KindPlaceholderMismatch Kind = "placeholder_mismatch"
	KindTypeMismatch        Kind = "type_mismatch"
	KindUntranslated        Kind = "untranslated"
	KindInvalidJSON         Kind = "invalid_json"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Issue is one finding.
type Issue struct {
	Severity  Severity `json:"severity"`
	Kind      Kind     `json:"kind"`
	Language  string   `json:"language"`
	Namespace string   `json:"namespace"`
	Key       string   `json:"key,omitempty"`
	Message   string   `json:"message"`
}

// Report is the outcome of Run.
type Report struct {
	Base       string   `json:"base"`
	Languages  []string `json:"languages"`
	Namespaces []string `json:"namespaces"`
	Issues     []Issue  `json:"issues"`
}

// Count returns the number of issues with severity s.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// Failed reports whether the run should exit non-zero. strict counts
// warnings as errors.
func (r *Report) Failed(strict bool) bool {
	if strict {
		return len(r.Issues) > 0
	}
	return r.Count(SeverityError) > 0
}

// Options selects what to compare.
type Options struct {
	Base string
	// Languages limits the check; empty means every directory except Base.
	Languages []string
}

// Run loads <lang>/<namespace>.json from fsys and compares every language
// with the base.
func Run(fsys fs.FS, opts Options) (*Report, error) {
	if opts.Base == "" {
		opts.Base = "en"
	}
	namespaces, err := namespacesOf(fsys, opts.Base)
	if err != nil {
		return nil, err
	}
	if len(namespaces) == 0 {
		return nil, fmt.Errorf("base language %q has no namespaces", opts.Base)
	}
	languages := opts.Languages
	if len(languages) == 0 {
		if languages, err = languagesOf(fsys, opts.Base); err != nil {
			return nil, err
		}
	}

	report := &Report{Base: opts.Base, Languages: languages, Namespaces: namespaces}
	for _, ns := range namespaces {
		base, err := load(fsys, opts.Base, ns)
		if err != nil {
			return nil, fmt.Errorf("load base %s/%s: %w", opts.Base, ns, err)
		}
		for _, lang := range languages {
			report.Issues = append(report.Issues, compareNamespace(fsys, base, lang, ns)...)
		}
	}
	sortIssues(report.Issues)
	return report, nil
}

func compareNamespace(fsys fs.FS, base map[string]any, lang, ns string) []Issue {
	target, err := load(fsys, lang, ns)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Issue{{
				Severity:  SeverityError,
				Kind:      KindMissingNamespace,
				Language:  lang,
				Namespace: ns,
				Message:   fmt.Sprintf("%s/%s.json does not exist", lang, ns),
			}}
		}
		return []Issue{{
			Severity:  SeverityError,
			Kind:      KindInvalidJSON,
			Language:  lang,
			Namespace: ns,
			Message:   err.Error(),
		}}
	}
	c := &comparer{lang: lang, ns: ns}
	c.walk("", base, target)
	return c.issues
}

type comparer struct {
	lang   string
	ns     string
	issues []Issue
}

func (c *comparer) add(sev Severity, kind Kind, key, msg string) {
	c.issues = append(c.issues, Issue{
		Severity:  sev,
		Kind:      kind,
		Language:  c.lang,
		Namespace: c.ns,
		Key:       key,
		Message:   msg,
	})
}

func (c *comparer) walk(prefix string, base, target map[string]any) {
	for _, k := range sortedKeys(base) {
		key := join(prefix, k)
		bv := base[k]
		tv, ok := target[k]
		if !ok {
			c.add(SeverityError, KindMissingKey, key, "key missing")
			continue
		}
		bm, bIsMap := bv.(map[string]any)
		tm, tIsMap := tv.(map[string]any)
		switch {
		case bIsMap && tIsMap:
			c.walk(key, bm, tm)
		case bIsMap != tIsMap:
			c.add(SeverityError, KindTypeMismatch, key,
				fmt.Sprintf("base is %s, translation is %s", kindOf(bv), kindOf(tv)))
		default:
			c.leaf(key, bv, tv)
		}
	}
	for _, k := range sortedKeys(target) {
		if _, ok := base[k]; !ok {
			c.add(SeverityWarning, KindExtraKey, join(prefix, k), "key not present in base")
		}
	}
}

func (c *comparer) leaf(key string, bv, tv any) {
	bs, bIsString := bv.(string)
	ts, tIsString := tv.(string)
	if bIsString != tIsString {
		c.add(SeverityError, KindTypeMismatch, key,
			fmt.Sprintf("base is %s, translation is %s", kindOf(bv), kindOf(tv)))
		return
	}
	if !bIsString {
		return
	}
	if strings.TrimSpace(ts) == "" {
		if strings.TrimSpace(bs) != "" {
			c.add(SeverityError, KindEmptyValue, key, "translation is empty")
		}
		return
	}
	want, got := Placeholders(bs), Placeholders(ts)
	if !slices.Equal(want, got) {
		c.add(SeverityError, KindPlaceholderMismatch, key,
			fmt.Sprintf("placeholders %v, base has %v", got, want))
	}
	if ts == bs && translatable(bs) {
		c.add(SeverityWarning, KindUntranslated, key, "identical to base")
	}
}

// translatable is false for strings with no letters left once placeholders
// are removed, and for very short tokens such as "OK" or brand names.
func translatable(s string) bool {
	rest := strings.TrimSpace(placeholder.ReplaceAllString(s, ""))
	if len([]rune(rest)) <= 3 {
		return false
	}
	return strings.ContainsFunc(rest, func(r rune) bool {
		return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
	})
}

// Placeholders returns the sorted distinct {{name}} placeholders of s.
func Placeholders(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

func kindOf(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case string:
		return "string"
	case []any:
		return "array"
	case nil:
		return "null"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func load(fsys fs.FS, lang, ns string) (map[string]any, error) {
	data, err := fs.ReadFile(fsys, path.Join(lang, ns+".json"))
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err = json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s/%s.json: %w", lang, ns, err)
	}
	return m, nil
}

func namespacesOf(fsys fs.FS, lang string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, lang)
	if err != nil {
		return nil, fmt.Errorf("read base language directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".json" {
			out = append(out, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(out)
	return out, nil
}

func languagesOf(fsys fs.FS, base string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read locales directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && e.Name() != base && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Language != b.Language {
			return a.Language < b.Language
		}
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Key < b.Key
	})
}
