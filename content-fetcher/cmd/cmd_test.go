package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/config"
)

// newTestDeps points every provider at srv and disables retries.
func newTestDeps(t *testing.T, srv *httptest.Server) *deps {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	cfg.OutputDir = t.TempDir()
	cfg.Logging.Level = "error"
	cfg.HTTP.MaxAttempts = 1
	cfg.HTTP.RequestsPerSecond = 0
	cfg.Books.BaseURL = srv.URL
	cfg.Books.Topics = []string{"anxiety"}
	cfg.Quotes.URL = srv.URL + "/quotes"
	cfg.TMDB.APIKey = ""
	cfg.Spotify.ClientID = ""
	cfg.Affiliate.Tag = "sunrain-20"

	d, err := buildDeps(cfg)
	require.NoError(t, err)
	return d
}

func TestParseTypes(t *testing.T) {
	t.Parallel()

	all, err := parseTypes("all")
	require.NoError(t, err)
	assert.Equal(t, catalog.Types, all)

	one, err := parseTypes("Movies")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Type{catalog.TypeMovies}, one)

	_, err = parseTypes("podcasts")
	require.Error(t, err)
}

func TestRunFetch_FallsBackToMockData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	d := newTestDeps(t, srv)

	require.NoError(t, runFetch(context.Background(), d, fetchOptions{types: catalog.Types}))

	for _, typ := range catalog.Types {
		_, err := os.Stat(filepath.Join(d.cfg.OutputDir, typ.FileName()))
		require.NoError(t, err, typ)
	}
	books, err := catalog.ReadJSON[catalog.Book](filepath.Join(d.cfg.OutputDir, "books.json"))
	require.NoError(t, err)
	require.NotEmpty(t, books)
	assert.Equal(t, "mock", books[0].Source)
	assert.True(t, d.linker.HasTag(books[0].AmazonURL))

	quotesOut, err := catalog.ReadJSON[catalog.Quote](filepath.Join(d.cfg.OutputDir, "quotes.json"))
	require.NoError(t, err)
	for _, q := range quotesOut {
		assert.NotEmpty(t, q.ID)
		assert.Positive(t, q.Quality)
	}

	var manifest catalog.Manifest
	require.NoError(t, readObject(filepath.Join(d.cfg.OutputDir, ManifestFile), &manifest))
	assert.Equal(t, len(books), manifest.Counts[catalog.TypeBooks])
	assert.Equal(t, []string{"mock"}, manifest.Sources[catalog.TypeMovies])
}

func TestRunFetch_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":"v1","volumeInfo":{"title":"Quiet","authors":["Susan Cain"]}}]}`))
	}))
	t.Cleanup(srv.Close)
	d := newTestDeps(t, srv)

	require.NoError(t, runFetch(context.Background(), d, fetchOptions{
		types:  []catalog.Type{catalog.TypeBooks},
		dryRun: true,
	}))
	entries, err := os.ReadDir(d.cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	rows := d.rec.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "google_books", rows[0].Provider)
	assert.Equal(t, 1, rows[0].Fetched)
}

func TestMergeManifest_KeepsOtherTypes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ManifestFile)
	require.NoError(t, catalog.WriteJSON(path, catalog.Manifest{
		Counts:  map[catalog.Type]int{catalog.TypeMusic: 4, catalog.TypeBooks: 1},
		Sources: map[catalog.Type][]string{catalog.TypeMusic: {"spotify"}},
	}))

	m := catalog.Manifest{
		Counts:  map[catalog.Type]int{catalog.TypeBooks: 9},
		Sources: map[catalog.Type][]string{catalog.TypeBooks: {"google_books"}},
	}
	require.NoError(t, mergeManifest(path, &m))
	assert.Equal(t, 9, m.Counts[catalog.TypeBooks])
	assert.Equal(t, 4, m.Counts[catalog.TypeMusic])
	assert.Equal(t, []string{"spotify"}, m.Sources[catalog.TypeMusic])
}

func TestTestAffiliate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	d := newTestDeps(t, srv)

	var buf bytes.Buffer
	require.NoError(t, testAffiliate(&buf, d))
	assert.Contains(t, buf.String(), "tag=sunrain-20")

	d.linker.Tag = ""
	buf.Reset()
	require.ErrorIs(t, testAffiliate(&buf, d), errAffiliateTag)
}

func TestQuotesDaily_FromFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	d := newTestDeps(t, srv)

	pool := mockQuotes(d)
	require.NotEmpty(t, pool)
	var buf bytes.Buffer
	f := quoteFlags{output: filepath.Join(d.cfg.OutputDir, "q.json"), threshold: -1}
	require.NoError(t, writeQuotes(&buf, d, f, pool))
	assert.Contains(t, buf.String(), "Wrote")

	read, err := catalog.ReadJSON[catalog.Quote](f.output)
	require.NoError(t, err)
	assert.Len(t, read, len(pool))
	assert.Equal(t, d.cfg.Quotes.Threshold, threshold(d, f))
}

func TestScheduledJobs_RunOneAtATime(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	d := newTestDeps(t, srv)
	d.cfg.Schedule = []config.ScheduleEntry{
		{Spec: "@every 1m", Type: "books"},
		{Spec: "@every 1m", Type: "quotes"},
	}

	var active, peak atomic.Int32
	var seen []catalog.Type
	var seenMu sync.Mutex
	fetch := func(_ context.Context, _ *deps, opts fetchOptions) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		seenMu.Lock()
		seen = append(seen, opts.types...)
		seenMu.Unlock()
		return nil
	}

	jobs, err := scheduledJobs(context.Background(), d, fetch)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	var wg sync.WaitGroup
	for _, job := range jobs {
		for range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				job.run()
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	assert.Len(t, seen, 6)
}
