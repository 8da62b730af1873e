package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/viper"

	"github.com/oe/sunrain-sub002/content-fetcher/internal/affiliate"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/books"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/config"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/links"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/metrics"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/quotes"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/spotify"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/tmdb"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/upstream"
	infrahttp "github.com/oe/sunrain-sub002/infrastructure/http"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/infrastructure/retry"
)

// deps holds everything a command needs, built once per invocation.
type deps struct {
	cfg     *config.Config
	log     infralogger.Logger
	rec     *metrics.Recorder
	http    *http.Client
	linker  affiliate.Linker
	scorer  *quotes.Scorer
	classes *quotes.Classifier
}

func newDeps() (*deps, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return buildDeps(cfg)
}

func buildDeps(cfg *config.Config) (*deps, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	client := infrahttp.NewClient(infrahttp.ClientConfig{
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Burst:             cfg.HTTP.Burst,
	})

	return &deps{
		cfg:     cfg,
		log:     log.With(infralogger.String("service", "content-fetcher")),
		rec:     metrics.New(),
		http:    client,
		linker:  affiliate.New(cfg.Affiliate.Tag, cfg.Affiliate.Domain),
		scorer:  quotes.NewScorer(),
		classes: quotes.NewClassifier(quotes.DefaultKeywords),
	}, nil
}

func (d *deps) retryOption() upstream.Option {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = d.cfg.HTTP.MaxAttempts
	return upstream.WithRetry(retryCfg)
}

func (d *deps) upstream(name string) *upstream.Client {
	return upstream.New(name, d.http, d.log, d.retryOption())
}

func (d *deps) tmdb() *tmdb.Client {
	c := d.cfg.TMDB
	return tmdb.New(tmdb.Config{
		APIKey:      c.APIKey,
		BearerToken: c.BearerToken,
		BaseURL:     c.BaseURL,
		Language:    c.Language,
		PerQuery:    c.PerQuery,
	}, d.upstream("tmdb"), d.linker)
}

func (d *deps) spotify(ctx context.Context) *spotify.Client {
	c := d.cfg.Spotify
	return spotify.New(ctx, spotify.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		BaseURL:      c.BaseURL,
		TokenURL:     c.TokenURL,
		Market:       c.Market,
		PerQuery:     c.PerQuery,
	}, d.http, d.log, d.retryOption())
}

func (d *deps) books() *books.Client {
	c := d.cfg.Books
	return books.New(books.Config{
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
		Language: c.Language,
		PerQuery: c.PerQuery,
	}, d.upstream("google_books"), d.linker)
}

func (d *deps) quotes() *quotes.Client {
	return quotes.New(d.cfg.Quotes.URL, d.upstream("zenquotes"), d.scorer, d.classes)
}

func (d *deps) validator() *links.Validator {
	return links.NewValidator(d.http, d.cfg.Links.Concurrency, d.log)
}

// serveMetrics exposes the recorder while ctx lives when an address is set.
func (d *deps) serveMetrics(ctx context.Context) {
	if d.cfg.MetricsAddr == "" {
		return
	}
	go func() {
		if err := d.rec.Serve(ctx, d.cfg.MetricsAddr); err != nil {
			d.log.Error("Metrics server failed", infralogger.Error(err))
		}
	}()
	d.log.Info("Serving metrics", infralogger.String("addr", d.cfg.MetricsAddr))
}
