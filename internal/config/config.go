// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the cache database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	YahooBaseURL      string
	UpstreamRateLimit int // requests per second
	FetchTimeout      time.Duration

	HistoryRange    string
	HistoryPoints   int // trailing points served by /api/history
	HistoryCacheTTL time.Duration
	QuoteCacheTTL   time.Duration

	CacheCleanupSchedule  string // cron expression with seconds field
	WALCheckpointSchedule string
	DefaultUniverse       []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ALLOCATOR_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:               absDataDir,
		Port:                  getEnvAsInt("GO_PORT", 8001),
		DevMode:               getEnvAsBool("DEV_MODE", false),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		YahooBaseURL:          getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		UpstreamRateLimit:     getEnvAsInt("UPSTREAM_RATE_LIMIT", 5),
		FetchTimeout:          getEnvAsDuration("FETCH_TIMEOUT", 20*time.Second),
		HistoryRange:          getEnv("HISTORY_RANGE", "1y"),
		HistoryPoints:         getEnvAsInt("HISTORY_POINTS", 260),
		HistoryCacheTTL:       getEnvAsDuration("HISTORY_CACHE_TTL", 6*time.Hour),
		QuoteCacheTTL:         getEnvAsDuration("QUOTE_CACHE_TTL", time.Minute),
		CacheCleanupSchedule:  getEnv("CACHE_CLEANUP_SCHEDULE", "0 0 3 * * *"),
		WALCheckpointSchedule: getEnv("WAL_CHECKPOINT_SCHEDULE", "0 */30 * * * *"),
		DefaultUniverse:       getEnvAsList("DEFAULT_UNIVERSE", []string{"VTI", "BND", "IAU"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CachePath is the SQLite file holding cached upstream responses.
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Validate checks that numeric limits are usable and the cleanup schedule parses
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid GO_PORT %d", c.Port)
	}
	if c.UpstreamRateLimit <= 0 {
		return fmt.Errorf("UPSTREAM_RATE_LIMIT must be positive, got %d", c.UpstreamRateLimit)
	}
	if c.HistoryPoints <= 0 {
		return fmt.Errorf("HISTORY_POINTS must be positive, got %d", c.HistoryPoints)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if c.HistoryCacheTTL <= 0 || c.QuoteCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if len(c.DefaultUniverse) == 0 {
		return fmt.Errorf("DEFAULT_UNIVERSE must name at least one symbol")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, expr := range map[string]string{
		"CACHE_CLEANUP_SCHEDULE":  c.CacheCleanupSchedule,
		"WAL_CHECKPOINT_SCHEDULE": c.WALCheckpointSchedule,
	} {
		if _, err := parser.Parse(expr); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, expr, err)
		}
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
