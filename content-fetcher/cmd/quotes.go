package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/fetcher"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/quotes"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

type quoteFlags struct {
	input     string
	output    string
	limit     int
	threshold int
	date      string
	topN      int
}

func newQuotesCommand() *cobra.Command {
	var f quoteFlags
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Fetch, score, categorize and select inspirational quotes",
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.input, "input", "i", "", "input file (.json or .xlsx); defaults to <output>/quotes.json")
	pf.StringVarP(&f.output, "output-file", "o", "", "output file; defaults to <output>/quotes.json")
	pf.IntVar(&f.limit, "limit", 0, "maximum number of quotes to keep, 0 for all")
	pf.IntVar(&f.threshold, "threshold", -1, "minimum quality score (default from config)")

	daily := &cobra.Command{
		Use:   "daily",
		Short: "Print the quote of the day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withQuotePool(&f, func(d *deps, pool []catalog.Quote, day time.Time) error {
				q, err := catalog.DailyQuote(pool, day, threshold(d, f))
				if err != nil {
					return err
				}
				return printQuote(cmd.OutOrStdout(), q)
			})
		},
	}
	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Print the quote of the ISO week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withQuotePool(&f, func(d *deps, pool []catalog.Quote, day time.Time) error {
				q, err := catalog.WeeklyQuote(pool, day, threshold(d, f))
				if err != nil {
					return err
				}
				return printQuote(cmd.OutOrStdout(), q)
			})
		},
	}
	for _, c := range []*cobra.Command{daily, weekly} {
		c.Flags().StringVar(&f.date, "date", "", "date as YYYY-MM-DD (default today)")
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a quote file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withQuotePool(&f, func(_ *deps, pool []catalog.Quote, _ time.Time) error {
				renderStats(cmd.OutOrStdout(), quotes.Summarize(pool, f.topN))
				return nil
			})
		},
	}
	stats.Flags().IntVar(&f.topN, "top", 10, "number of authors to list")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "fetch",
			Short: "Fetch quotes from the API or import them from -i",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return fetchQuotes(cmd, &f)
			},
		},
		daily,
		weekly,
		&cobra.Command{
			Use:   "quality",
			Short: "Re-score quotes and keep those at or above --threshold",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withQuotePool(&f, func(d *deps, pool []catalog.Quote, _ time.Time) error {
					for i := range pool {
						pool[i].Quality = d.scorer.Score(pool[i])
					}
					kept := d.scorer.Filter(pool, threshold(d, f), f.limit)
					d.log.Info("Scored quotes",
						infralogger.Int("total", len(pool)),
						infralogger.Int("kept", len(kept)),
						infralogger.Int("threshold", threshold(d, f)),
					)
					return writeQuotes(cmd.OutOrStdout(), d, f, kept)
				})
			},
		},
		&cobra.Command{
			Use:   "categorize",
			Short: "Re-tag quotes with keyword categories",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withQuotePool(&f, func(d *deps, pool []catalog.Quote, _ time.Time) error {
					for i := range pool {
						pool[i].Categories = d.classes.Categorize(pool[i].Text)
					}
					renderStats(cmd.OutOrStdout(), quotes.Summarize(pool, 0))
					return writeQuotes(cmd.OutOrStdout(), d, f, limit(pool, f.limit))
				})
			},
		},
		stats,
	)
	return cmd
}

func threshold(d *deps, f quoteFlags) int {
	if f.threshold >= 0 {
		return f.threshold
	}
	return d.cfg.Quotes.Threshold
}

func limit(pool []catalog.Quote, n int) []catalog.Quote {
	if n > 0 && len(pool) > n {
		return pool[:n]
	}
	return pool
}

func defaultQuotesPath(d *deps) string {
	return filepath.Join(d.cfg.OutputDir, catalog.TypeQuotes.FileName())
}

// fetchQuotes imports from -i when given, otherwise calls the quotes API
// with mock fallback.
func fetchQuotes(cmd *cobra.Command, f *quoteFlags) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer func() { _ = d.log.Sync() }()

	var pool []catalog.Quote
	if f.input != "" {
		imported, rejects, importErr := quotes.ImportFile(f.input)
		if importErr != nil {
			return importErr
		}
		for _, r := range rejects {
			d.log.Warn("Row rejected", infralogger.Int("row", r.Row), infralogger.String("error", r.Error))
		}
		client := d.quotes()
		for _, q := range imported {
			pool = append(pool, client.Enrich(q))
		}
		var dropped int
		pool, dropped = quotes.Dedupe(pool)
		d.log.Info("Imported quotes",
			infralogger.String("file", f.input),
			infralogger.Int("quotes", len(pool)),
			infralogger.Int("duplicates", dropped),
		)
	} else {
		report, runErr := fetcher.Run(cmd.Context(), fetcher.Job[catalog.Quote]{
			Type:     catalog.TypeQuotes,
			Provider: d.quotes(),
			Queries:  []string{""},
			Key:      fetcher.QuoteKey,
			Mock:     func() []catalog.Quote { return mockQuotes(d) },
		}, d.rec, d.log)
		if runErr != nil {
			return runErr
		}
		pool = report.Items
	}

	if f.threshold >= 0 {
		pool = d.scorer.Filter(pool, f.threshold, 0)
	}
	return writeQuotes(cmd.OutOrStdout(), d, *f, limit(pool, f.limit))
}

// withQuotePool loads -i (or the default quotes file) and resolves --date.
func withQuotePool(f *quoteFlags, fn func(*deps, []catalog.Quote, time.Time) error) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer func() { _ = d.log.Sync() }()

	day := time.Now()
	if f.date != "" {
		if day, err = time.Parse(time.DateOnly, f.date); err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}
	}

	path := f.input
	if path == "" {
		path = defaultQuotesPath(d)
	}
	var pool []catalog.Quote
	if filepath.Ext(path) == ".json" {
		pool, err = catalog.ReadJSON[catalog.Quote](path)
		if err != nil {
			return fmt.Errorf("read quotes: %w", err)
		}
	} else {
		if pool, _, err = quotes.ImportFile(path); err != nil {
			return err
		}
		client := d.quotes()
		for i := range pool {
			pool[i] = client.Enrich(pool[i])
		}
	}
	return fn(d, pool, day)
}

func writeQuotes(w io.Writer, d *deps, f quoteFlags, pool []catalog.Quote) error {
	path := f.output
	if path == "" {
		path = defaultQuotesPath(d)
	}
	if err := catalog.WriteJSON(path, pool); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %d quotes to %s\n", len(pool), path)
	return nil
}

func printQuote(w io.Writer, q catalog.Quote) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(q)
}

func renderStats(w io.Writer, s quotes.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Quotes")
	t.AppendRow(table.Row{"Total", s.Total})
	t.AppendRow(table.Row{"With author", s.WithAuthor})
	t.AppendRow(table.Row{"Average quality", fmt.Sprintf("%.1f", s.AverageQuality)})
	t.Render()

	if len(s.Categories) > 0 {
		renderCounts(w, "Category", s.Categories)
	}
	if len(s.TopAuthors) > 0 {
		renderCounts(w, "Author", s.TopAuthors)
	}
}

func renderCounts(w io.Writer, label string, counts []quotes.Count) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{label, "Count"})
	for _, c := range counts {
		t.AppendRow(table.Row{c.Name, c.Count})
	}
	t.Render()
}

// readObject decodes a JSON object file.
func readObject(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
