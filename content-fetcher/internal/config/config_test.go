package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oe/sunrain-sub002/content-fetcher/internal/config"
	infraconfig "github.com/oe/sunrain-sub002/infrastructure/config"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	require.NoError(t, config.BindEnv(v))
	return v
}

func TestLoad_Defaults(t *testing.T) {
	v := newViper(t)

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "data/content", cfg.OutputDir)
	assert.Equal(t, 60, cfg.Quotes.Threshold)
	assert.Equal(t, 8, cfg.Links.Concurrency)
	assert.Len(t, cfg.Books.Topics, 5)
	assert.Equal(t, "www.amazon.com", cfg.Affiliate.Domain)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("SPOTIFY_CLIENT_ID", "spotify-id")
	t.Setenv("GOOGLE_BOOKS_API_KEY", "books-key")
	t.Setenv("AMAZON_AFFILIATE_TAG", "sunrain-20")

	cfg, err := config.Load(newViper(t))
	require.NoError(t, err)
	assert.Equal(t, "tmdb-key", cfg.TMDB.APIKey)
	assert.Equal(t, "spotify-id", cfg.Spotify.ClientID)
	assert.Equal(t, "books-key", cfg.Books.APIKey)
	assert.Equal(t, "sunrain-20", cfg.Affiliate.Tag)
}

func TestLoad_FileWithSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir: /tmp/out
schedule:
  - spec: "0 3 * * *"
    type: all
  - spec: "@weekly"
    type: quotes
`), 0o600))

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	require.Len(t, cfg.Schedule, 2)
	assert.Equal(t, "quotes", cfg.Schedule[1].Type)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"bad spec", "schedule:\n  - spec: \"every day\"\n    type: all\n", "schedule[0].spec"},
		{"bad type", "schedule:\n  - spec: \"0 * * * *\"\n    type: podcasts\n", "schedule[0].type"},
		{"threshold", "quotes:\n  threshold: 150\n", "quotes.threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			v := newViper(t)
			v.SetConfigFile(path)
			require.NoError(t, v.ReadInConfig())

			_, err := config.Load(v)
			var verr *infraconfig.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
