package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.RetryBackoff())
	assert.Equal(t, 2*time.Second, cfg.SettleDelay())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
models:
  scorer: gpt-4o
timing:
  retry_backoff_seconds: 10
store:
  driver: sqlite
  dsn: /tmp/evalpipe.sqlite
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "gpt-4o", cfg.Models.Scorer)
	assert.Equal(t, 10*time.Second, cfg.RetryBackoff())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	// Untouched sections keep defaults.
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Models.Notes)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
