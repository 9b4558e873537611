package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5001", cfg.Server.Addr())
	assert.Equal(t, []string{"https://top3pick.in", "http://localhost:3000", "http://localhost:5000"}, cfg.CORS.APIOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, BackendFile, cfg.Snapshot.Backend)
	assert.Equal(t, 5, cfg.Engine.TopK)
	assert.Equal(t, "passthrough", cfg.Engine.Degenerate)
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phonerec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
  read_timeout: 3s
snapshot:
  backend: redis
  redis:
    addr: redis:6379
engine:
  top_k: 7
`), 0o644))

	t.Setenv("PHONEREC_ENGINE__TOP_K", "9")
	t.Setenv("PHONEREC_DATA__BRANDS", "apple, samsung ,")
	t.Setenv("PHONEREC_LOG__FORMAT", "console")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, BackendRedis, cfg.Snapshot.Backend)
	assert.Equal(t, "redis:6379", cfg.Snapshot.Redis.Addr)
	assert.Equal(t, 9, cfg.Engine.TopK)
	assert.Equal(t, []string{"apple", "samsung"}, cfg.Data.Brands)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*App)
	}{
		{"port", func(c *App) { c.Server.Port = 0 }},
		{"backend", func(c *App) { c.Snapshot.Backend = "s3" }},
		{"redis addr", func(c *App) {
			c.Snapshot.Backend = BackendRedis
			c.Snapshot.Redis.Addr = ""
		}},
		{"key", func(c *App) { c.Snapshot.Key = "" }},
		{"top_k", func(c *App) { c.Engine.TopK = 0 }},
		{"max_top_k", func(c *App) { c.Engine.MaxTopK = 2 }},
		{"degenerate", func(c *App) { c.Engine.Degenerate = "zero" }},
		{"rate limit", func(c *App) { c.RateLimit.Requests = 0 }},
		{"log level", func(c *App) { c.Log.Level = "loud" }},
		{"log format", func(c *App) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
