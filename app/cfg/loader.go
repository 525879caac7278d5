package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./offer-comb.db" description:"SQLite database file"`
	FeedsDir string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing source configuration files"`

	// Pipeline
	WorkerCount      int           `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of sources processed in parallel"`
	EntryConcurrency int           `long:"entry-concurrency" env:"ENTRY_CONCURRENCY" default:"1" description:"Number of entries processed in parallel within one source"`
	SourceTimeout    time.Duration `long:"source-timeout" env:"SOURCE_TIMEOUT" default:"5m" description:"Deadline for processing a single source"`
	Truncation       string        `long:"truncation" env:"TRUNCATION" default:"always" choice:"always" choice:"when-truncated" description:"When to append the description truncation marker"`
	LootFeedURL      string        `long:"loot-feed-url" env:"LOOT_FEED_URL" default:"https://www.gamerpower.com/rss/loot" description:"Giveaway feed classified as DLC"`
	GamesFeedURL     string        `long:"games-feed-url" env:"GAMES_FEED_URL" default:"https://www.gamerpower.com/rss/games" description:"Giveaway feed classified as Videogame"`

	// Fetching
	FetchTimeout  time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10s" description:"Timeout for a single HTTP attempt"`
	FetchAttempts int           `long:"fetch-attempts" env:"FETCH_ATTEMPTS" default:"3" description:"Total HTTP attempts per URL"`
	RetryDelay    time.Duration `long:"retry-delay" env:"RETRY_DELAY" default:"5s" description:"Fixed delay between HTTP attempts"`
	RateLimit     float64       `long:"rate-limit" env:"RATE_LIMIT" default:"0" description:"Requests per second per host (0 disables)"`
	UserAgent     string        `long:"user-agent" env:"USER_AGENT" default:"Offer Comb/1.0" description:"User agent string for HTTP requests"`

	// HTTP API
	Serve        bool   `long:"serve" env:"SERVE" description:"Keep running and serve the HTTP API after the run"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://offers.example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses command-line flags and environment variables. It returns
// nil, nil when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		FeedsDir:         raw.FeedsDir,
		WorkerCount:      raw.WorkerCount,
		EntryConcurrency: raw.EntryConcurrency,
		SourceTimeout:    raw.SourceTimeout,
		Truncation:       raw.Truncation,
		LootFeedURL:      raw.LootFeedURL,
		GamesFeedURL:     raw.GamesFeedURL,
		FetchTimeout:     raw.FetchTimeout,
		FetchAttempts:    raw.FetchAttempts,
		RetryDelay:       raw.RetryDelay,
		RateLimit:        raw.RateLimit,
		UserAgent:        raw.UserAgent,
		Serve:            raw.Serve,
		Port:             raw.Port,
		BaseUrl:          cmp.Or(raw.BaseUrl, "http://localhost:"+raw.Port),
		APIAccessKey:     raw.APIAccessKey,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	switch {
	case cfg.WorkerCount < 1:
		return fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	case cfg.EntryConcurrency < 1:
		return fmt.Errorf("entry concurrency must be at least 1, got %d", cfg.EntryConcurrency)
	case cfg.FetchAttempts < 1:
		return fmt.Errorf("fetch attempts must be at least 1, got %d", cfg.FetchAttempts)
	case cfg.RateLimit < 0:
		return fmt.Errorf("rate limit must not be negative, got %v", cfg.RateLimit)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
