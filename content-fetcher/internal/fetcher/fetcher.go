// Package fetcher runs providers over search topics, deduplicates the
// results and falls back to fixed datasets when upstreams are unavailable.
package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/upstream"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

// Provider searches one upstream API.
type Provider[T any] interface {
	Name() string
	Search(ctx context.Context, query string) ([]T, error)
}

// Recorder receives run counters.
type Recorder interface {
	Fetched(provider string, n int)
	Failed(provider string)
	Deduplicated(provider string, n int)
	MockUsed(provider string)
	Observe(provider string, d time.Duration)
}

// Job describes one content type's fetch.
type Job[T any] struct {
	Type     catalog.Type
	Provider Provider[T]
	Queries  []string
	// Key identifies duplicates.
	Key func(T) string
	// Mock supplies the fallback dataset.
	Mock func() []T
	// Limit caps the output; zero means no cap.
	Limit int
}

// Report is the outcome of Run.
type Report[T any] struct {
	Type         catalog.Type
	Provider     string
	Items        []T
	Fetched      int
	Failed       int
	Deduplicated int
	UsedMock     bool
}

// Run queries the provider once per query. A provider without credentials,
// or one whose every query failed, yields the mock dataset. Failed queries
// are logged and skipped. Cancellation stops the run and returns ctx's
// error.
func Run[T any](ctx context.Context, job Job[T], rec Recorder, log infralogger.Logger) (*Report[T], error) {
	name := job.Provider.Name()
	start := time.Now()
	report := &Report[T]{Type: job.Type, Provider: name}
	log = log.With(infralogger.String("provider", name), infralogger.String("type", string(job.Type)))

	var items []T
	notConfigured := false
	for _, query := range job.Queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := job.Provider.Search(ctx, query)
		if errors.Is(err, upstream.ErrNotConfigured) {
			notConfigured = true
			log.Info("Provider not configured, using mock data")
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			report.Failed++
			rec.Failed(name)
			log.Warn("Query failed", infralogger.String("query", query), infralogger.Error(err))
			continue
		}
		report.Fetched += len(found)
		items = append(items, found...)
	}
	if report.Fetched > 0 {
		rec.Fetched(name, report.Fetched)
	}

	allFailed := len(job.Queries) > 0 && report.Failed == len(job.Queries)
	if (notConfigured || allFailed || len(job.Queries) == 0) && job.Mock != nil {
		if allFailed {
			log.Warn("All queries failed, using mock data", infralogger.Int("failed", report.Failed))
		}
		items = job.Mock()
		report.UsedMock = true
		rec.MockUsed(name)
	}

	items, dropped := Dedupe(items, job.Key)
	if dropped > 0 {
		report.Deduplicated = dropped
		rec.Deduplicated(name, dropped)
	}
	if job.Limit > 0 && len(items) > job.Limit {
		items = items[:job.Limit]
	}
	report.Items = items
	rec.Observe(name, time.Since(start))

	log.Info("Fetch finished",
		infralogger.Int("items", len(items)),
		infralogger.Int("fetched", report.Fetched),
		infralogger.Int("failed", report.Failed),
		infralogger.Int("deduplicated", report.Deduplicated),
	)
	return report, nil
}

// Dedupe keeps the first item per key and drops items whose key is empty.
func Dedupe[T any](items []T, key func(T) string) ([]T, int) {
	if key == nil {
		return items, 0
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out, len(items) - len(out)
}

// BookKey, MovieKey, TrackKey and QuoteKey identify catalog items.
func BookKey(b catalog.Book) string   { return b.ID }
func MovieKey(m catalog.Movie) string { return m.ID }
func TrackKey(t catalog.Track) string { return t.ID }
func QuoteKey(q catalog.Quote) string { return q.ID }
