package quotes

import (
	"slices"
	"strings"
	"unicode"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
)

const (
	DefaultMinLength = 20
	DefaultMaxLength = 200

	baseScore        = 50
	lengthBonus      = 20
	lengthPenalty    = 25
	authorBonus      = 15
	punctuationBonus = 10
	capitalBonus     = 5
	bannedPenalty    = 60
	shoutingPenalty  = 15
)

// DefaultBanned are terms that make a quote unsuitable for a wellness site.
var DefaultBanned = []string{"kill", "suicide", "hate", "stupid", "die", "worthless"}

// Scorer rates quotes 0..100.
type Scorer struct {
	MinLength int
	MaxLength int
	Banned    []string
}

func NewScorer() *Scorer {
	return &Scorer{MinLength: DefaultMinLength, MaxLength: DefaultMaxLength, Banned: DefaultBanned}
}

// Score starts at 50 and adjusts for length window, author, terminal
// punctuation, leading capital, all-caps text and banned terms.
func (s *Scorer) Score(q catalog.Quote) int {
	score := baseScore
	n := len([]rune(q.Text))
	if n >= s.MinLength && n <= s.MaxLength {
		score += lengthBonus
	} else {
		score -= lengthPenalty
	}
	if q.Author != "" {
		score += authorBonus
	}
	if strings.HasSuffix(q.Text, ".") || strings.HasSuffix(q.Text, "!") || strings.HasSuffix(q.Text, "?") {
		score += punctuationBonus
	}
	if r := []rune(q.Text); len(r) > 0 && unicode.IsUpper(r[0]) {
		score += capitalBonus
	}
	if n > 10 && strings.ToUpper(q.Text) == q.Text {
		score -= shoutingPenalty
	}

	words := strings.FieldsFunc(strings.ToLower(q.Text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, term := range s.Banned {
		if slices.Contains(words, term) {
			score -= bannedPenalty
			break
		}
	}
	return min(max(score, 0), 100)
}

// Filter keeps quotes whose quality is at least threshold, scoring any that
// have no score yet. limit <= 0 means no cap.
func (s *Scorer) Filter(quotes []catalog.Quote, threshold, limit int) []catalog.Quote {
	out := make([]catalog.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Quality == 0 {
			q.Quality = s.Score(q)
		}
		if q.Quality < threshold {
			continue
		}
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
