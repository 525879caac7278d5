package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath   string
	FeedsDir string

	// Pipeline
	WorkerCount      int
	EntryConcurrency int
	SourceTimeout    time.Duration
	Truncation       string
	LootFeedURL      string
	GamesFeedURL     string

	// Fetching
	FetchTimeout  time.Duration
	FetchAttempts int
	RetryDelay    time.Duration
	RateLimit     float64
	UserAgent     string

	// HTTP API
	Serve        bool
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
