// Package metrics counts fetch outcomes per provider and optionally serves
// them for scraping.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "content_fetcher"

// Recorder is safe for concurrent use.
type Recorder struct {
	registry     *prometheus.Registry
	fetched      *prometheus.CounterVec
	failed       *prometheus.CounterVec
	deduplicated *prometheus.CounterVec
	mockUsed     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	linksBroken  *prometheus.CounterVec

	mu      sync.Mutex
	summary map[string]*Row
}

// Row is one provider's totals for the stdout summary.
type Row struct {
	Provider     string
	Fetched      int
	Failed       int
	Deduplicated int
	Mock         bool
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	labels := []string{"provider"}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_fetched_total",
			Help:      "Items returned by upstream providers.",
		}, labels),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_failed_total",
			Help:      "Upstream queries that returned an error.",
		}, labels),
		deduplicated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_deduplicated_total",
			Help:      "Duplicate items dropped after fetching.",
		}, labels),
		mockUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mock_fallbacks_total",
			Help:      "Runs that wrote the fixed mock dataset.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one provider run.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
		linksBroken: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_broken_total",
			Help:      "Outbound links that failed validation.",
		}, []string{"type"}),
		summary: make(map[string]*Row),
	}
	r.registry.MustRegister(
		r.fetched, r.failed, r.deduplicated, r.mockUsed, r.duration, r.linksBroken,
		collectors.NewGoCollector(),
	)
	return r
}

// Registry exposes the registry for tests and custom handlers.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) row(provider string) *Row {
	row, ok := r.summary[provider]
	if !ok {
		row = &Row{Provider: provider}
		r.summary[provider] = row
	}
	return row
}

func (r *Recorder) Fetched(provider string, n int) {
	r.fetched.WithLabelValues(provider).Add(float64(n))
	r.mu.Lock()
	r.row(provider).Fetched += n
	r.mu.Unlock()
}

func (r *Recorder) Failed(provider string) {
	r.failed.WithLabelValues(provider).Inc()
	r.mu.Lock()
	r.row(provider).Failed++
	r.mu.Unlock()
}

func (r *Recorder) Deduplicated(provider string, n int) {
	r.deduplicated.WithLabelValues(provider).Add(float64(n))
	r.mu.Lock()
	r.row(provider).Deduplicated += n
	r.mu.Unlock()
}

func (r *Recorder) MockUsed(provider string) {
	r.mockUsed.WithLabelValues(provider).Inc()
	r.mu.Lock()
	r.row(provider).Mock = true
	r.mu.Unlock()
}

func (r *Recorder) Observe(provider string, d time.Duration) {
	r.duration.WithLabelValues(provider).Observe(d.Seconds())
}

func (r *Recorder) LinksBroken(contentType string, n int) {
	r.linksBroken.WithLabelValues(contentType).Add(float64(n))
}

// Rows returns the summary sorted by provider.
func (r *Recorder) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Row, 0, len(r.summary))
	for _, row := range r.summary {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// WriteSummary renders the per-provider totals as a table.
func (r *Recorder) WriteSummary(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Provider", "Fetched", "Failed", "Deduplicated", "Mock"})
	for _, row := range r.Rows() {
		t.AppendRow(table.Row{row.Provider, row.Fetched, row.Failed, row.Deduplicated, row.Mock})
	}
	t.Render()
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
