package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oe/sunrain-sub002/infrastructure/config"
)

type sampleConfig struct {
	Name    string        `yaml:"name"`
	Port    int           `env:"SAMPLE_PORT"    yaml:"port"`
	Timeout time.Duration `env:"SAMPLE_TIMEOUT" yaml:"timeout"`
	Tags    []string      `env:"SAMPLE_TAGS"    yaml:"tags"`
	Nested  struct {
		Enabled bool `env:"SAMPLE_ENABLED" yaml:"enabled"`
	} `yaml:"nested"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := writeFile(t, "name: website\nport: 8080\ntimeout: 5s\ntags: [a, b]\nnested:\n  enabled: true\n")

	cfg, err := config.Load[sampleConfig](path)
	require.NoError(t, err)

	assert.Equal(t, "website", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"a", "b"}, cfg.Tags)
	assert.True(t, cfg.Nested.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "port: 8080\n")
	t.Setenv("SAMPLE_PORT", "9090")
	t.Setenv("SAMPLE_TIMEOUT", "2m")
	t.Setenv("SAMPLE_TAGS", "x, y ,z")
	t.Setenv("SAMPLE_ENABLED", "yes")

	cfg, err := config.Load[sampleConfig](path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, []string{"x", "y", "z"}, cfg.Tags)
	assert.True(t, cfg.Nested.Enabled)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := config.Load[sampleConfig](filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestLoadWithDefaults_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadWithDefaults[sampleConfig](filepath.Join(t.TempDir(), "missing.yml"), func(c *sampleConfig) {
		if c.Port == 0 {
			c.Port = 7000
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoadWithDefaults_EnvWinsOverDefaults(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "7100")

	cfg, err := config.LoadWithDefaults[sampleConfig](writeFile(t, "name: x\n"), func(c *sampleConfig) {
		c.Port = 7000
	})
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Port)
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, config.ValidatePort("server.port", 8080))

	err := config.ValidatePort("server.port", 70000)
	require.Error(t, err)
	assert.Equal(t, "server.port: must be between 1 and 65535", err.Error())
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/sunrain/website.yml")
	assert.Equal(t, "/etc/sunrain/website.yml", config.GetConfigPath("config.yml"))
}
