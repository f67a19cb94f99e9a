package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "factdeck:alerts", cfg.Redis.AlertChannel)
	assert.True(t, cfg.Worker.Enabled)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "factdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
access_token_ttl: 30m
allowed_origins: ["https://app.factdeck.dev"]
postgres:
  host: db.internal
  name: decks
redis:
  addr: redis:6379
worker:
  concurrency: 2
otel:
  enabled: true
  sample_ratio: 0.25
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("POSTGRES_NAME", "decks_override")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.dev, https://b.dev")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "decks_override", cfg.Postgres.Name)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.True(t, cfg.Otel.Enabled)
	assert.InDelta(t, 0.25, cfg.Otel.SampleRatio, 1e-9)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("worker:\n  concurrency: 0\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	_, err = LoadConfig()
	assert.Error(t, err)
}
