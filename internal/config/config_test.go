package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("ALLOCATOR_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.DirExists(t, dir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5, cfg.UpstreamRateLimit)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "1y", cfg.HistoryRange)
	assert.Equal(t, 260, cfg.HistoryPoints)
	assert.Equal(t, 6*time.Hour, cfg.HistoryCacheTTL)
	assert.Equal(t, time.Minute, cfg.QuoteCacheTTL)
	assert.Equal(t, "0 0 3 * * *", cfg.CacheCleanupSchedule)
	assert.Equal(t, "0 */30 * * * *", cfg.WALCheckpointSchedule)
	assert.Equal(t, []string{"VTI", "BND", "IAU"}, cfg.DefaultUniverse)
	assert.Equal(t, filepath.Join(dir, "cache.db"), cfg.CachePath())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ALLOCATOR_DATA_DIR", t.TempDir())
	t.Setenv("GO_PORT", "9100")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("UPSTREAM_RATE_LIMIT", "2")
	t.Setenv("HISTORY_CACHE_TTL", "30m")
	t.Setenv("DEFAULT_UNIVERSE", " spy, ,agg ")
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 2, cfg.UpstreamRateLimit)
	assert.Equal(t, 30*time.Minute, cfg.HistoryCacheTTL)
	assert.Equal(t, []string{"spy", "agg"}, cfg.DefaultUniverse)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:                  8001,
			UpstreamRateLimit:     5,
			HistoryPoints:         260,
			FetchTimeout:          time.Second,
			HistoryCacheTTL:       time.Hour,
			QuoteCacheTTL:         time.Minute,
			CacheCleanupSchedule:  "0 0 3 * * *",
			WALCheckpointSchedule: "0 */30 * * * *",
			DefaultUniverse:       []string{"VTI"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"zero port", func(c *Config) { c.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Port = 70000 }, true},
		{"negative rate limit", func(c *Config) { c.UpstreamRateLimit = -1 }, true},
		{"zero history points", func(c *Config) { c.HistoryPoints = 0 }, true},
		{"zero quote ttl", func(c *Config) { c.QuoteCacheTTL = 0 }, true},
		{"empty universe", func(c *Config) { c.DefaultUniverse = nil }, true},
		{"bad schedule", func(c *Config) { c.CacheCleanupSchedule = "every day" }, true},
		{"bad wal schedule", func(c *Config) { c.WALCheckpointSchedule = "" }, true},
		{"descriptor schedule", func(c *Config) { c.CacheCleanupSchedule = "@daily" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
