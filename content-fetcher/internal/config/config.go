// Package config holds content-fetcher settings resolved by viper from
// flags, environment and an optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	infraconfig "github.com/oe/sunrain-sub002/infrastructure/config"
)

// Config is the fully resolved configuration.
type Config struct {
	OutputDir   string          `mapstructure:"output_dir"`
	MetricsAddr string          `mapstructure:"metrics_addr"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	HTTP        HTTPConfig      `mapstructure:"http"`
	Affiliate   AffiliateConfig `mapstructure:"affiliate"`
	TMDB        TMDBConfig      `mapstructure:"tmdb"`
	Spotify     SpotifyConfig   `mapstructure:"spotify"`
	Books       BooksConfig     `mapstructure:"books"`
	Quotes      QuotesConfig    `mapstructure:"quotes"`
	Links       LinksConfig     `mapstructure:"links"`
	Schedule    []ScheduleEntry `mapstructure:"schedule"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
}

type AffiliateConfig struct {
	Tag    string `mapstructure:"tag"`
	Domain string `mapstructure:"domain"`
}

type TMDBConfig struct {
	APIKey      string   `mapstructure:"api_key"`
	BearerToken string   `mapstructure:"bearer_token"`
	BaseURL     string   `mapstructure:"base_url"`
	Language    string   `mapstructure:"language"`
	PerQuery    int      `mapstructure:"per_query"`
	Topics      []string `mapstructure:"topics"`
}

type SpotifyConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	BaseURL      string   `mapstructure:"base_url"`
	TokenURL     string   `mapstructure:"token_url"`
	Market       string   `mapstructure:"market"`
	PerQuery     int      `mapstructure:"per_query"`
	Topics       []string `mapstructure:"topics"`
}

type BooksConfig struct {
	APIKey   string   `mapstructure:"api_key"`
	BaseURL  string   `mapstructure:"base_url"`
	Language string   `mapstructure:"language"`
	PerQuery int      `mapstructure:"per_query"`
	Topics   []string `mapstructure:"topics"`
}

type QuotesConfig struct {
	URL       string `mapstructure:"url"`
	Threshold int    `mapstructure:"threshold"`
	Limit     int    `mapstructure:"limit"`
}

type LinksConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ScheduleEntry runs a fetch of Type on a five-field cron Spec.
type ScheduleEntry struct {
	Spec string `mapstructure:"spec"`
	Type string `mapstructure:"type"`
}

// SetDefaults registers every key so AutomaticEnv can resolve it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "data/content")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("http.timeout", 20*time.Second)
	v.SetDefault("http.user_agent", "SunrainContentFetcher/1.0")
	v.SetDefault("http.requests_per_second", 4.0)
	v.SetDefault("http.burst", 2)
	v.SetDefault("http.max_attempts", 3)

	v.SetDefault("affiliate.tag", "")
	v.SetDefault("affiliate.domain", "www.amazon.com")

	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.bearer_token", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.per_query", 5)
	v.SetDefault("tmdb.topics", []string{"mental health", "depression", "anxiety", "therapy", "hope"})

	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.base_url", "https://api.spotify.com/v1")
	v.SetDefault("spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify.market", "US")
	v.SetDefault("spotify.per_query", 5)
	v.SetDefault("spotify.topics", []string{"meditation", "relaxation", "sleep", "calm piano", "nature sounds"})

	v.SetDefault("books.api_key", "")
	v.SetDefault("books.base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("books.language", "en")
	v.SetDefault("books.per_query", 5)
	v.SetDefault("books.topics", []string{
		"subject:psychology depression",
		"anxiety self help",
		"mindfulness meditation",
		"cognitive behavioral therapy",
		"self compassion",
	})

	v.SetDefault("quotes.url", "https://zenquotes.io/api/quotes")
	v.SetDefault("quotes.threshold", 60)
	v.SetDefault("quotes.limit", 0)

	v.SetDefault("links.concurrency", 8)
}

// BindEnv maps the conventional provider variables onto config keys, in
// addition to the AutomaticEnv names (tmdb.api_key ← TMDB_API_KEY).
func BindEnv(v *viper.Viper) error {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindings := map[string][]string{
		"books.api_key":  {"GOOGLE_BOOKS_API_KEY", "BOOKS_API_KEY"},
		"affiliate.tag":  {"AMAZON_AFFILIATE_TAG", "AFFILIATE_TAG"},
		"tmdb.api_key":   {"TMDB_API_KEY"},
		"logging.level":  {"LOG_LEVEL"},
		"logging.format": {"LOG_FORMAT"},
		"output_dir":     {"CONTENT_OUTPUT_DIR", "OUTPUT_DIR"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load unmarshals and validates v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks ranges, schedule specs and schedule types.
func (c *Config) Validate() error {
	if err := infraconfig.ValidateRequired("output_dir", c.OutputDir); err != nil {
		return err
	}
	if c.Quotes.Threshold < 0 || c.Quotes.Threshold > 100 {
		return &infraconfig.ValidationError{Field: "quotes.threshold", Message: "must be between 0 and 100"}
	}
	if err := infraconfig.ValidatePositive("links.concurrency", c.Links.Concurrency); err != nil {
		return err
	}
	for i, entry := range c.Schedule {
		field := fmt.Sprintf("schedule[%d]", i)
		if _, err := cronParser.Parse(entry.Spec); err != nil {
			return &infraconfig.ValidationError{Field: field + ".spec", Message: err.Error()}
		}
		if entry.Type != "all" {
			if _, err := catalog.ParseType(entry.Type); err != nil {
				return &infraconfig.ValidationError{Field: field + ".type", Message: err.Error()}
			}
		}
	}
	return nil
}

// CronParser parses the schedule spec format accepted by Validate.
func CronParser() cron.Parser {
	return cronParser
}
