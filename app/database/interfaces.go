package database

import (
	"context"
	"time"
)

// FeedItem is a normalized record as handed to the sink.
type FeedItem struct {
	ItemHash    string
	Title       string
	Description string
	Link        string
	ImageURL    string // empty when absent
	SourceURL   string
	FeedType    string
	PubDate     time.Time
	FeedURL     string
	BaseURL     string
	RunID       string
}

// ItemRepository is the record sink. UpsertItem is keyed by ItemHash and
// must be idempotent; repeated calls overwrite the stored row.
type ItemRepository interface {
	UpsertItem(ctx context.Context, item FeedItem) error

	GetItems(ctx context.Context, feedType string, limit int) ([]Item, error)
	GetItem(ctx context.Context, itemHash string) (*Item, error)
	GetItemCount(ctx context.Context) (int, error)
	GetCategoryStats(ctx context.Context) ([]CategoryCount, error)
}
