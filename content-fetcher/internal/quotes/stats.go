package quotes

import (
	"cmp"
	"math"
	"slices"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
)

// Count is a label with its frequency.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarizes a quote pool.
type Stats struct {
	Total          int     `json:"total"`
	WithAuthor     int     `json:"withAuthor"`
	AverageQuality float64 `json:"averageQuality"`
	Categories     []Count `json:"categories"`
	TopAuthors     []Count `json:"topAuthors"`
}

// Summarize counts categories and the topN most quoted authors. Ties sort by
// name.
func Summarize(quotes []catalog.Quote, topN int) Stats {
	s := Stats{Total: len(quotes)}
	categories := make(map[string]int)
	authors := make(map[string]int)
	quality := 0
	for _, q := range quotes {
		quality += q.Quality
		if q.Author != "" {
			s.WithAuthor++
			authors[q.Author]++
		}
		for _, c := range q.Categories {
			categories[c]++
		}
	}
	if s.Total > 0 {
		s.AverageQuality = math.Round(float64(quality)/float64(s.Total)*10) / 10
	}
	s.Categories = ranked(categories, 0)
	s.TopAuthors = ranked(authors, topN)
	return s
}

func ranked(m map[string]int, limit int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
