package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/fetcher"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/links"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/mockdata"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/quotes"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

// ManifestFile sits next to the content files.
const ManifestFile = "manifest.json"

var errAffiliateTag = errors.New("affiliate tag missing from generated links")

type fetchOptions struct {
	types         []catalog.Type
	dryRun        bool
	validateLinks bool
	repairLinks   bool
	testAffiliate bool
}

func newFetchCommand() *cobra.Command {
	var (
		typeFlag string
		opts     fetchOptions
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch content from the upstream providers",
		Long: `Fetch books (Google Books), movies (TMDB), music (Spotify) and quotes,
then write <output>/<type>.json and <output>/manifest.json.`,
		Example: `  content-fetcher fetch --type all
  content-fetcher fetch --type books --dry-run --validate-links
  content-fetcher fetch --test-affiliate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			types, err := parseTypes(typeFlag)
			if err != nil {
				return err
			}
			opts.types = types

			d, err := newDeps()
			if err != nil {
				return err
			}
			defer func() { _ = d.log.Sync() }()

			if opts.testAffiliate {
				return testAffiliate(cmd.OutOrStdout(), d)
			}

			d.serveMetrics(cmd.Context())
			if err = runFetch(cmd.Context(), d, opts); err != nil {
				return err
			}
			d.rec.WriteSummary(cmd.OutOrStdout())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&typeFlag, "type", "t", "all", "books, movies, music, quotes or all")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "fetch but do not write files")
	flags.BoolVar(&opts.validateLinks, "validate-links", false, "check every outbound URL")
	flags.BoolVar(&opts.repairLinks, "repair-links", false, "regenerate broken or malformed links (implies --validate-links)")
	flags.BoolVar(&opts.testAffiliate, "test-affiliate", false, "print sample affiliate links and verify the partner tag")
	return cmd
}

func parseTypes(s string) ([]catalog.Type, error) {
	if s == "" || s == "all" {
		return catalog.Types, nil
	}
	t, err := catalog.ParseType(s)
	if err != nil {
		return nil, err
	}
	return []catalog.Type{t}, nil
}

// runFetch fetches every requested type. A failing type is logged and does
// not stop the others; cancellation does.
func runFetch(ctx context.Context, d *deps, opts fetchOptions) error {
	manifest := catalog.Manifest{
		GeneratedAt: time.Now().UTC(),
		Counts:      make(map[catalog.Type]int),
		Sources:     make(map[catalog.Type][]string),
	}
	if opts.repairLinks {
		opts.validateLinks = true
	}

	var failed []catalog.Type
	for _, t := range opts.types {
		count, source, err := fetchOne(ctx, d, t, opts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.log.Error("Fetch failed", infralogger.String("type", string(t)), infralogger.Error(err))
			failed = append(failed, t)
			continue
		}
		manifest.Counts[t] = count
		manifest.Sources[t] = []string{source}
	}

	if !opts.dryRun && len(manifest.Counts) > 0 {
		path := filepath.Join(d.cfg.OutputDir, ManifestFile)
		if err := mergeManifest(path, &manifest); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("fetch failed for %v", failed)
	}
	return nil
}

func fetchOne(ctx context.Context, d *deps, t catalog.Type, opts fetchOptions) (int, string, error) {
	switch t {
	case catalog.TypeBooks:
		return runJob(ctx, d, opts, fetcher.Job[catalog.Book]{
			Type:     t,
			Provider: d.books(),
			Queries:  d.cfg.Books.Topics,
			Key:      fetcher.BookKey,
			Mock:     func() []catalog.Book { return mockdata.Books(d.linker) },
		}, links.BookURLs, links.NewRepairer(d.linker).Books)
	case catalog.TypeMovies:
		return runJob(ctx, d, opts, fetcher.Job[catalog.Movie]{
			Type:     t,
			Provider: d.tmdb(),
			Queries:  d.cfg.TMDB.Topics,
			Key:      fetcher.MovieKey,
			Mock:     func() []catalog.Movie { return mockdata.Movies(d.linker) },
		}, links.MovieURLs, links.NewRepairer(d.linker).Movies)
	case catalog.TypeMusic:
		return runJob(ctx, d, opts, fetcher.Job[catalog.Track]{
			Type:     t,
			Provider: d.spotify(ctx),
			Queries:  d.cfg.Spotify.Topics,
			Key:      fetcher.TrackKey,
			Mock:     mockdata.Music,
		}, links.TrackURLs, links.NewRepairer(d.linker).Tracks)
	case catalog.TypeQuotes:
		return runJob(ctx, d, opts, fetcher.Job[catalog.Quote]{
			Type:     t,
			Provider: d.quotes(),
			Queries:  []string{""},
			Key:      fetcher.QuoteKey,
			Mock:     func() []catalog.Quote { return mockQuotes(d) },
			Limit:    d.cfg.Quotes.Limit,
		}, nil, nil)
	default:
		return 0, "", fmt.Errorf("unsupported type %q", t)
	}
}

// runJob fetches, optionally validates and repairs links, and writes the
// result file.
func runJob[T any](
	ctx context.Context,
	d *deps,
	opts fetchOptions,
	job fetcher.Job[T],
	urls func([]T) []string,
	repair func([]T, map[string]bool) int,
) (int, string, error) {
	report, err := fetcher.Run(ctx, job, d.rec, d.log)
	if err != nil {
		return 0, "", err
	}

	if opts.validateLinks && urls != nil {
		results, checkErr := d.validator().Check(ctx, urls(report.Items))
		if checkErr != nil {
			return 0, "", checkErr
		}
		broken := links.Broken(results)
		d.rec.LinksBroken(string(job.Type), len(broken))
		for _, b := range broken {
			d.log.Warn("Broken link",
				infralogger.String("type", string(job.Type)),
				infralogger.String("url", b.URL),
				infralogger.String("reason", b.Reason),
			)
		}
		if opts.repairLinks && repair != nil {
			fixed := repair(report.Items, links.BrokenSet(results))
			d.log.Info("Links repaired", infralogger.String("type", string(job.Type)), infralogger.Int("fixed", fixed))
		}
	}

	source := report.Provider
	if report.UsedMock {
		source = "mock"
	}
	if opts.dryRun {
		d.log.Info("Dry run, not writing", infralogger.String("type", string(job.Type)), infralogger.Int("items", len(report.Items)))
		return len(report.Items), source, nil
	}
	path := filepath.Join(d.cfg.OutputDir, job.Type.FileName())
	if err = catalog.WriteJSON(path, report.Items); err != nil {
		return 0, "", err
	}
	d.log.Info("Wrote content file", infralogger.String("path", path), infralogger.Int("items", len(report.Items)))
	return len(report.Items), source, nil
}

func mockQuotes(d *deps) []catalog.Quote {
	raw := mockdata.Quotes()
	out := make([]catalog.Quote, 0, len(raw))
	for _, q := range raw {
		q.Source = "mock"
		if n, ok := quotes.Normalize(q); ok {
			n.Quality = d.scorer.Score(n)
			out = append(out, n)
		}
	}
	return out
}

// mergeManifest keeps counts of types not fetched in this run.
func mergeManifest(path string, m *catalog.Manifest) error {
	var previous catalog.Manifest
	if err := readObject(path, &previous); err == nil {
		for t, n := range previous.Counts {
			if _, ok := m.Counts[t]; !ok {
				m.Counts[t] = n
				m.Sources[t] = previous.Sources[t]
			}
		}
	}
	return catalog.WriteJSON(path, m)
}

func testAffiliate(w io.Writer, d *deps) error {
	samples := []struct {
		kind string
		url  string
	}{
		{"book (isbn)", d.linker.BookURL("9780380810338", "Feeling Good", "David D. Burns")},
		{"book (search)", d.linker.BookURL("", "The Anxiety and Phobia Workbook", "Edmund J. Bourne")},
		{"movie", d.linker.MovieURL("Inside Out", "2015")},
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "URL", "Tagged"})
	allTagged := true
	for _, s := range samples {
		tagged := d.linker.HasTag(s.url)
		allTagged = allTagged && tagged
		t.AppendRow(table.Row{s.kind, s.url, tagged})
	}
	t.Render()

	if d.linker.Tag == "" {
		fmt.Fprintln(w, "No affiliate tag configured (set AMAZON_AFFILIATE_TAG).")
		return errAffiliateTag
	}
	if !allTagged {
		return errAffiliateTag
	}
	fmt.Fprintf(w, "Affiliate tag %q present on all sample links.\n", d.linker.Tag)
	return nil
}
