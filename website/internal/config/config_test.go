package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oe/sunrain-sub002/website/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, 8060, cfg.Server.Port)
	assert.Equal(t, config.BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 90, cfg.Storage.RetentionDays)
	assert.Equal(t, "en", cfg.I18n.DefaultLanguage)
	assert.Equal(t, 30*time.Minute, cfg.I18n.CacheTTL)
	assert.Equal(t, 100, cfg.I18n.CacheMaxEntries)
	assert.Equal(t, "content/questionnaires", cfg.Content.QuestionnaireDir)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
storage:
  backend: memory
i18n:
  default_language: zh
  languages: [en, zh]
  cache_ttl: 5m
`)
	t.Setenv("I18N_CACHE_MAX", "7")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 5*time.Minute, cfg.I18n.CacheTTL)
	assert.Equal(t, 7, cfg.I18n.CacheMaxEntries)
	assert.Equal(t, []string{"zh", "en"}, cfg.SupportedLanguages())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "s3" }},
		{"redis backend without redis", func(c *config.Config) { c.Storage.Backend = config.BackendRedis }},
		{"redis tier without redis", func(c *config.Config) { c.I18n.RedisTier = true }},
		{"default language unsupported", func(c *config.Config) { c.I18n.DefaultLanguage = "fr" }},
		{"postgres without database", func(c *config.Config) { c.Storage.Backend = config.BackendPostgres }},
		{"bad port", func(c *config.Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
