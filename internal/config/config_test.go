package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 25, cfg.Search.PerPage)
	assert.Equal(t, 0.6, cfg.Search.Alpha)
	assert.Equal(t, 150, cfg.Search.DenseK)
	assert.Equal(t, 300, cfg.Search.LexicalK)
	assert.Equal(t, "hashed", cfg.Semantic.Provider)
	assert.Equal(t, 384, cfg.Semantic.Dimension)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingUserConfigTolerated(t *testing.T) {
	// Given no explicit config path and no user config file
	t.Setenv("HOME", t.TempDir())

	// When loading
	cfg, err := Load("")

	// Then defaults apply without error
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Search.PerPage)
}

func TestLoadMissingExplicitConfigFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Equal(t, grerrors.ErrCodeConfigNotFound, grerrors.GetCode(err))
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  per_page: 50
  alpha: 0.4
semantic:
  provider: remote
  endpoint: http://localhost:9090
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Search.PerPage)
	assert.Equal(t, 0.4, cfg.Search.Alpha)
	assert.Equal(t, "remote", cfg.Semantic.Provider)
	// Untouched fields keep defaults.
	assert.Equal(t, 150, cfg.Search.DenseK)
}

func TestEnvOverridesBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  alpha: 0.4\n"), 0o644))
	t.Setenv("GRANTHA_ALPHA", "0.9")
	t.Setenv("GRANTHA_PACK_DIR", "/tmp/pack-override")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Search.Alpha)
	assert.Equal(t, "/tmp/pack-override", cfg.Paths.PackDir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"alpha above one", func(c *Config) { c.Search.Alpha = 1.5 }},
		{"alpha negative", func(c *Config) { c.Search.Alpha = -0.1 }},
		{"per_page not allowed", func(c *Config) { c.Search.PerPage = 30 }},
		{"zero dense_k", func(c *Config) { c.Search.DenseK = 0 }},
		{"zero dimension", func(c *Config) { c.Semantic.Dimension = 0 }},
		{"unknown provider", func(c *Config) { c.Semantic.Provider = "magic" }},
		{"remote without endpoint", func(c *Config) { c.Semantic.Provider = "remote" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, grerrors.ErrCodeConfigInvalid, grerrors.GetCode(err))
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")
	cfg := NewConfig()
	cfg.Search.PerPage = 100

	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, loaded.Search.PerPage)
}
