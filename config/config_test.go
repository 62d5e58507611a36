package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "browsergrid.yaml")
	yaml := []byte(`
api_key: bg_yaml_key_123
base_url: https://staging.browsergrid.example
timeout: 10s
max_retries: 1
log:
  level: debug
  pretty: true
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "bg_yaml_key_123", cfg.APIKey)
	assert.Equal(t, "https://staging.browsergrid.example", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BROWSERGRID_API_KEY", "bg_env_key_456")
	t.Setenv("BROWSERGRID_MAX_RETRIES", "5")
	t.Setenv("BROWSERGRID_LOG__LEVEL", "warn")

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, "bg_env_key_456", cfg.APIKey)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestEnvBeatsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "browsergrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: bg_yaml_key_123\n"), 0o600))
	t.Setenv("BROWSERGRID_API_KEY", "bg_env_key_456")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "bg_env_key_456", cfg.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BaseURL:    DefaultBaseURL,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			Log:        LogConfig{Level: "info"},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, Validate(valid()))
	})

	t.Run("missing base URL fails", func(t *testing.T) {
		cfg := valid()
		cfg.BaseURL = ""
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BaseURL")
	})

	t.Run("non-URL base fails", func(t *testing.T) {
		cfg := valid()
		cfg.BaseURL = "not a url"
		assert.Error(t, Validate(cfg))
	})

	t.Run("zero timeout fails", func(t *testing.T) {
		cfg := valid()
		cfg.Timeout = 0
		assert.Error(t, Validate(cfg))
	})

	t.Run("negative retries fails", func(t *testing.T) {
		cfg := valid()
		cfg.MaxRetries = -1
		assert.Error(t, Validate(cfg))
	})

	t.Run("excessive retries fails", func(t *testing.T) {
		cfg := valid()
		cfg.MaxRetries = 50
		assert.Error(t, Validate(cfg))
	})

	t.Run("short API key fails", func(t *testing.T) {
		cfg := valid()
		cfg.APIKey = "short"
		assert.Error(t, Validate(cfg))
	})

	t.Run("unknown log level fails", func(t *testing.T) {
		cfg := valid()
		cfg.Log.Level = "loud"
		assert.Error(t, Validate(cfg))
	})
}
