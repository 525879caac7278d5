package database

import (
	"time"
)

type Item struct {
	ItemHash    string
	Title       string
	Description string
	Link        string
	ImageURL    string
	SourceURL   string
	FeedType    string // category label
	PubDate     time.Time
	FeedURL     string
	BaseURL     string
	RunID       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CategoryCount struct {
	FeedType string
	Count    int
}
