// Package quotes fetches, imports, scores and categorizes inspirational
// quotes.
package quotes

import (
	"context"
	"fmt"
	"strings"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/upstream"
)

// DefaultURL answers with a ZenQuotes style array.
const DefaultURL = "https://zenquotes.io/api/quotes"

// Client is a quote provider. The query argument of Search is ignored by
// list endpoints and kept so Client satisfies the fetcher provider shape.
type Client struct {
	url        string
	api        *upstream.Client
	scorer     *Scorer
	classifier *Classifier
}

func New(rawURL string, api *upstream.Client, scorer *Scorer, classifier *Classifier) *Client {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	return &Client{url: rawURL, api: api, scorer: scorer, classifier: classifier}
}

func (c *Client) Name() string { return "zenquotes" }

type quoteJSON struct {
	Q string `json:"q"`
	A string `json:"a"`
}

func (c *Client) Search(ctx context.Context, _ string) ([]catalog.Quote, error) {
	var raw []quoteJSON
	if err := c.api.GetJSON(ctx, c.url, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}

	out := make([]catalog.Quote, 0, len(raw))
	for _, r := range raw {
		q, ok := Normalize(catalog.Quote{Text: r.Q, Author: r.A, Source: c.Name(), Language: "en"})
		if !ok {
			continue
		}
		out = append(out, c.Enrich(q))
	}
	return out, nil
}

// Enrich sets quality and categories.
func (c *Client) Enrich(q catalog.Quote) catalog.Quote {
	if c.scorer != nil {
		q.Quality = c.scorer.Score(q)
	}
	if c.classifier != nil && len(q.Categories) == 0 {
		q.Categories = c.classifier.Categorize(q.Text)
	}
	return q
}

// Normalize trims the text, strips wrapping quotation marks, drops
// placeholder authors and assigns the stable id. It reports false for
// empty text.
func Normalize(q catalog.Quote) (catalog.Quote, bool) {
	q.Text = strings.Join(strings.Fields(q.Text), " ")
	q.Text = strings.Trim(q.Text, `"“”'‘’`)
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return q, false
	}
	q.Author = strings.TrimSpace(q.Author)
	switch strings.ToLower(q.Author) {
	case "unknown", "anonymous", "zenquotes.io":
		q.Author = ""
	}
	if q.Language == "" {
		q.Language = "en"
	}
	q.ID = catalog.QuoteID(q.Text, q.Author)
	return q, true
}

// Dedupe keeps the first quote for each id.
func Dedupe(quotes []catalog.Quote) ([]catalog.Quote, int) {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]catalog.Quote, 0, len(quotes))
	for _, q := range quotes {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out, len(quotes) - len(out)
}
