// Package config loads the website configuration.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	infraconfig "github.com/oe/sunrain-sub002/infrastructure/config"
)

const (
	defaultServerPort       = 8060
	defaultStorageDir       = "data/store"
	defaultStoragePrefix    = "sunrain"
	defaultStorageTable     = "sunrain_store"
	defaultCollectionBytes  = 2 << 20
	defaultRetentionDays    = 90
	defaultLanguage         = "en"
	defaultCacheTTL         = 30 * time.Minute
	defaultCacheMaxEntries  = 100
	defaultQuestionnaireDir = "content/questionnaires"
	defaultLibraryDir       = "data/content"
	defaultQuoteThreshold   = 60
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Debug       bool                       `env:"APP_DEBUG"    yaml:"debug"`
	Server      infraconfig.ServerConfig   `yaml:"server"`
	CORSOrigins []string                   `env:"CORS_ORIGINS" yaml:"cors_origins"`
	Logging     infraconfig.LoggingConfig  `yaml:"logging"`
	Redis       infraconfig.RedisConfig    `yaml:"redis"`
	Database    infraconfig.DatabaseConfig `yaml:"database"`
	Storage     StorageConfig              `yaml:"storage"`
	I18n        I18nConfig                 `yaml:"i18n"`
	Content     ContentConfig              `yaml:"content"`
}

// StorageConfig selects the session store backend and its limits.
type StorageConfig struct {
	Backend          string `env:"STORAGE_BACKEND"        yaml:"backend"`
	Dir              string `env:"STORAGE_DIR"            yaml:"dir"`
	Prefix           string `env:"STORAGE_PREFIX"         yaml:"prefix"`
	Table            string `env:"STORAGE_TABLE"          yaml:"table"`
	SessionsMaxBytes int    `env:"STORAGE_SESSIONS_BYTES" yaml:"sessions_max_bytes"`
	ResultsMaxBytes  int    `env:"STORAGE_RESULTS_BYTES"  yaml:"results_max_bytes"`
	RetentionDays    int    `env:"STORAGE_RETENTION_DAYS" yaml:"retention_days"`
}

// I18nConfig controls translation loading.
type I18nConfig struct {
	DefaultLanguage string        `env:"I18N_DEFAULT_LANGUAGE" yaml:"default_language"`
	Languages       []string      `env:"I18N_LANGUAGES"        yaml:"languages"`
	CacheTTL        time.Duration `env:"I18N_CACHE_TTL"        yaml:"cache_ttl"`
	CacheMaxEntries int           `env:"I18N_CACHE_MAX"        yaml:"cache_max_entries"`
	RedisTier       bool          `env:"I18N_REDIS_TIER"       yaml:"redis_tier"`
	Preload         []string      `yaml:"preload"`
}

// ContentConfig points at questionnaire definitions and fetched libraries.
type ContentConfig struct {
	QuestionnaireDir    string `env:"QUESTIONNAIRE_DIR"       yaml:"questionnaire_dir"`
	WatchQuestionnaires bool   `env:"QUESTIONNAIRE_WATCH"     yaml:"watch_questionnaires"`
	LibraryDir          string `env:"CONTENT_DIR"             yaml:"library_dir"`
	QuoteThreshold      int    `env:"CONTENT_QUOTE_THRESHOLD" yaml:"quote_threshold"`
}

func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("server.port", c.Server.Port); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := infraconfig.ValidateOneOf("storage.backend", c.Storage.Backend,
		BackendFile, BackendRedis, BackendPostgres, BackendMemory); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case BackendFile:
		if err := infraconfig.ValidateRequired("storage.dir", c.Storage.Dir); err != nil {
			return err
		}
	case BackendRedis:
		if !c.Redis.Enabled {
			return errors.New("storage.backend redis requires redis.enabled")
		}
	case BackendPostgres:
		if err := infraconfig.ValidateRequired("database.database", c.Database.Database); err != nil {
			return err
		}
	}
	if c.I18n.RedisTier && !c.Redis.Enabled {
		return errors.New("i18n.redis_tier requires redis.enabled")
	}
	if !slices.Contains(c.I18n.Languages, c.I18n.DefaultLanguage) {
		return &infraconfig.ValidationError{
			Field:   "i18n.default_language",
			Message: fmt.Sprintf("%q is not in i18n.languages", c.I18n.DefaultLanguage),
		}
	}
	if err := infraconfig.ValidatePositive("i18n.cache_max_entries", c.I18n.CacheMaxEntries); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("storage.sessions_max_bytes", c.Storage.SessionsMaxBytes); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("storage.results_max_bytes", c.Storage.ResultsMaxBytes); err != nil {
		return err
	}
	return infraconfig.ValidateRequired("content.questionnaire_dir", c.Content.QuestionnaireDir)
}

func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	cfg.Server.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Redis.SetDefaults()
	cfg.Database.SetDefaults()

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendFile
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = defaultStorageDir
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = defaultStoragePrefix
	}
	if cfg.Storage.Table == "" {
		cfg.Storage.Table = defaultStorageTable
	}
	if cfg.Storage.SessionsMaxBytes == 0 {
		cfg.Storage.SessionsMaxBytes = defaultCollectionBytes
	}
	if cfg.Storage.ResultsMaxBytes == 0 {
		cfg.Storage.ResultsMaxBytes = defaultCollectionBytes
	}
	if cfg.Storage.RetentionDays == 0 {
		cfg.Storage.RetentionDays = defaultRetentionDays
	}

	if cfg.I18n.DefaultLanguage == "" {
		cfg.I18n.DefaultLanguage = defaultLanguage
	}
	if len(cfg.I18n.Languages) == 0 {
		cfg.I18n.Languages = []string{"en", "zh", "es", "ja"}
	}
	if cfg.I18n.CacheTTL == 0 {
		cfg.I18n.CacheTTL = defaultCacheTTL
	}
	if cfg.I18n.CacheMaxEntries == 0 {
		cfg.I18n.CacheMaxEntries = defaultCacheMaxEntries
	}
	if len(cfg.I18n.Preload) == 0 {
		cfg.I18n.Preload = []string{"common"}
	}

	if cfg.Content.QuestionnaireDir == "" {
		cfg.Content.QuestionnaireDir = defaultQuestionnaireDir
	}
	if cfg.Content.LibraryDir == "" {
		cfg.Content.LibraryDir = defaultLibraryDir
	}
	if cfg.Content.QuoteThreshold == 0 {
		cfg.Content.QuoteThreshold = defaultQuoteThreshold
	}
}

// SupportedLanguages lists the default language first, then the rest in
// configured order.
func (c *Config) SupportedLanguages() []string {
	out := []string{c.I18n.DefaultLanguage}
	for _, l := range c.I18n.Languages {
		if l != c.I18n.DefaultLanguage {
			out = append(out, l)
		}
	}
	return out
}
