package cfg

import (
	"os"
	"testing"
	"time"
)

// unsetEnv removes variables for the duration of the test. go-flags treats a
// set but empty variable as an explicit value.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	unsetEnv(t, "DB_PATH", "FEEDS_DIR", "WORKER_COUNT", "ENTRY_CONCURRENCY", "PORT", "BASE_URL",
		"TRUNCATION", "SOURCE_TIMEOUT", "FETCH_TIMEOUT", "FETCH_ATTEMPTS", "RETRY_DELAY",
		"LOOT_FEED_URL", "SERVE", "DEBUG", "TZ")

	cfg, err := LoadArgs(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.DBPath != "./offer-comb.db" {
		t.Errorf("Expected db path './offer-comb.db', got '%s'", cfg.DBPath)
	}
	if cfg.FeedsDir != "./feeds" {
		t.Errorf("Expected feeds dir './feeds', got '%s'", cfg.FeedsDir)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.EntryConcurrency != 1 {
		t.Errorf("Expected entry concurrency 1, got %d", cfg.EntryConcurrency)
	}
	if cfg.SourceTimeout != 5*time.Minute {
		t.Errorf("Expected source timeout 5m, got %s", cfg.SourceTimeout)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("Expected fetch timeout 10s, got %s", cfg.FetchTimeout)
	}
	if cfg.FetchAttempts != 3 {
		t.Errorf("Expected 3 fetch attempts, got %d", cfg.FetchAttempts)
	}
	if cfg.RetryDelay != 5*time.Second {
		t.Errorf("Expected retry delay 5s, got %s", cfg.RetryDelay)
	}
	if cfg.Truncation != "always" {
		t.Errorf("Expected truncation 'always', got '%s'", cfg.Truncation)
	}
	if cfg.LootFeedURL != "https://www.gamerpower.com/rss/loot" {
		t.Errorf("Unexpected loot feed URL '%s'", cfg.LootFeedURL)
	}
	if cfg.BaseUrl != "http://localhost:8080" {
		t.Errorf("Expected base URL to default to localhost, got '%s'", cfg.BaseUrl)
	}
	if cfg.Serve {
		t.Error("Expected serve to be disabled")
	}
	if Get() != cfg {
		t.Error("Get should return the loaded configuration")
	}
}

func TestLoadArgsOverrides(t *testing.T) {
	unsetEnv(t, "BASE_URL", "RATE_LIMIT", "SERVE")
	t.Setenv("WORKER_COUNT", "7")

	cfg, err := LoadArgs([]string{
		"--db-path", "/tmp/x.db",
		"--truncation", "when-truncated",
		"--source-timeout", "90s",
		"--rate-limit", "0.5",
		"--serve",
		"--port", "9090",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.WorkerCount != 7 {
		t.Errorf("Expected worker count from env 7, got %d", cfg.WorkerCount)
	}
	if cfg.DBPath != "/tmp/x.db" {
		t.Errorf("Expected db path '/tmp/x.db', got '%s'", cfg.DBPath)
	}
	if cfg.Truncation != "when-truncated" {
		t.Errorf("Expected truncation 'when-truncated', got '%s'", cfg.Truncation)
	}
	if cfg.SourceTimeout != 90*time.Second {
		t.Errorf("Expected source timeout 90s, got %s", cfg.SourceTimeout)
	}
	if cfg.RateLimit != 0.5 {
		t.Errorf("Expected rate limit 0.5, got %v", cfg.RateLimit)
	}
	if !cfg.Serve {
		t.Error("Expected serve to be enabled")
	}
	if cfg.BaseUrl != "http://localhost:9090" {
		t.Errorf("Expected base URL 'http://localhost:9090', got '%s'", cfg.BaseUrl)
	}
}

func TestLoadArgsInvalid(t *testing.T) {
	unsetEnv(t, "WORKER_COUNT", "TRUNCATION", "FETCH_ATTEMPTS", "RATE_LIMIT")

	tests := [][]string{
		{"--truncation", "sometimes"},
		{"--worker-count", "0"},
		{"--fetch-attempts", "0"},
		{"--rate-limit=-1"},
		{"--unknown-flag"},
	}

	for _, args := range tests {
		if _, err := LoadArgs(args); err == nil {
			t.Errorf("Expected error for args %v", args)
		}
	}
}
