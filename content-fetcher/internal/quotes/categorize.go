package quotes

import (
	"slices"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Category names.
const (
	CategoryAnxiety     = "anxiety"
	CategoryDepression  = "depression"
	CategoryStress      = "stress"
	CategoryMindfulness = "mindfulness"
	CategoryResilience  = "resilience"
	CategoryHope        = "hope"
	CategorySelfCare    = "self-care"
	CategoryGeneral     = "general"
)

// DefaultKeywords maps each category to its trigger words.
var DefaultKeywords = map[string][]string{
	CategoryAnxiety:     {"anxiety", "anxious", "worry", "fear", "afraid", "nervous", "panic"},
	CategoryDepression:  {"depression", "sad", "sorrow", "darkness", "lonely", "despair", "tears"},
	CategoryStress:      {"stress", "pressure", "overwhelm", "burden", "busy", "rest"},
	CategoryMindfulness: {"present", "moment", "breath", "mindful", "calm", "peace", "now"},
	CategoryResilience:  {"strength", "strong", "courage", "overcome", "rise", "fall", "persever"},
	CategoryHope:        {"hope", "light", "tomorrow", "dream", "believe", "future"},
	CategorySelfCare:    {"yourself", "self", "kindness", "care", "love", "gentle", "heal"},
}

var categoryOrder = []string{
	CategoryAnxiety, CategoryDepression, CategoryStress, CategoryMindfulness,
	CategoryResilience, CategoryHope, CategorySelfCare,
}

// Classifier tags text with categories in one pass over the text.
type Classifier struct {
	matcher  *ahocorasick.Matcher
	keywords []string
	owners   [][]string
}

// NewClassifier builds a matcher over keywords. A keyword shared by several
// categories tags all of them.
func NewClassifier(keywords map[string][]string) *Classifier {
	c := &Classifier{}
	index := make(map[string]int)
	for _, category := range orderedCategories(keywords) {
		for _, kw := range keywords[category] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			i, ok := index[kw]
			if !ok {
				i = len(c.keywords)
				index[kw] = i
				c.keywords = append(c.keywords, kw)
				c.owners = append(c.owners, nil)
			}
			c.owners[i] = append(c.owners[i], category)
		}
	}
	if len(c.keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.keywords)
	}
	return c
}

// Categorize returns matched categories in a stable order, or general when
// nothing matches.
func (c *Classifier) Categorize(text string) []string {
	if c.matcher == nil {
		return []string{CategoryGeneral}
	}
	hits := c.matcher.Match([]byte(strings.ToLower(text)))
	matched := make(map[string]bool)
	for _, h := range hits {
		if h < len(c.owners) {
			for _, category := range c.owners[h] {
				matched[category] = true
			}
		}
	}
	if len(matched) == 0 {
		return []string{CategoryGeneral}
	}
	var out []string
	for _, category := range categoryOrder {
		if matched[category] {
			out = append(out, category)
			delete(matched, category)
		}
	}
	return append(out, sortedKeys(matched)...)
}

// orderedCategories lists known categories first, then custom ones sorted.
func orderedCategories(keywords map[string][]string) []string {
	rest := make(map[string]bool, len(keywords))
	for k := range keywords {
		rest[k] = true
	}
	out := make([]string, 0, len(keywords))
	for _, category := range categoryOrder {
		if rest[category] {
			out = append(out, category)
			delete(rest, category)
		}
	}
	return append(out, sortedKeys(rest)...)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
