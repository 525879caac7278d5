package api

import (
	"github.com/goodoffers/offer-comb/app/database"
	"github.com/goodoffers/offer-comb/app/feed"
	"github.com/goodoffers/offer-comb/app/tasks"
)

const (
	defaultItemLimit = 50
	maxItemLimit     = 500
)

type Handler struct {
	itemRepo    database.ItemRepository
	generator   *feed.Generator
	configCache *feed.ConfigCache
	runner      tasks.SourceRunner
}

type sourceInfo struct {
	Name            string       `json:"name"`
	URL             string       `json:"url"`
	BaseURL         string       `json:"base_url"`
	Variant         feed.Variant `json:"variant,omitempty"`
	Mode            feed.Mode    `json:"mode"`
	Enabled         bool         `json:"enabled"`
	MaxEntries      int          `json:"max_entries"`
	ContentSelector string       `json:"content_selector,omitempty"`
	ImageSelector   string       `json:"image_selector,omitempty"`
	PageFallback    bool         `json:"page_fallback"`
}

type itemInfo struct {
	ItemID      string `json:"item_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	ImageURL    string `json:"image_url,omitempty"`
	SourceURL   string `json:"source_url"`
	Category    string `json:"category"`
	PubDate     string `json:"pub_date"`
	FeedURL     string `json:"feed_url,omitempty"`
	RunID       string `json:"run_id,omitempty"`
}
