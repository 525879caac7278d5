package feed

import (
	"errors"
	"time"
)

var (
	ErrSelectorMiss  = errors.New("content selector matched nothing")
	ErrMissingLink   = errors.New("entry has no link")
	ErrMissingTitle  = errors.New("entry has no title")
	ErrInvalidSource = errors.New("invalid source configuration")
)

// Feed entry as handed over by the parser

type Entry struct {
	Title       string
	Link        string
	Description string
	Enclosures  []Enclosure
}

type Enclosure struct {
	URL  string
	Type string
}

// Output records

type Category string

const (
	CategoryDLC             Category = "DLC"
	CategoryVideogame       Category = "Videogame"
	CategoryItchioGame      Category = "itchio_game"
	CategoryIvyLeagueCourse Category = "Ivy_League_Course"
	CategoryUdemyCourse     Category = "Udemy_Course"
	CategoryUnknown         Category = "unknown"
)

var Categories = []Category{
	CategoryDLC,
	CategoryVideogame,
	CategoryItchioGame,
	CategoryIvyLeagueCourse,
	CategoryUdemyCourse,
	CategoryUnknown,
}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// SourceRef is the part of a source configuration that travels with a record.
// Selector expressions stay behind.
type SourceRef struct {
	FeedURL string
	BaseURL string
}

type Record struct {
	Title       string
	Description string
	Link        string
	ImageURL    string // empty when the source has no image
	ItemID      string
	SourceURL   string
	Category    Category
	PublishedAt time.Time
	Source      SourceRef
}

// Configuration types

type Variant string

const (
	VariantNone  Variant = ""
	VariantLoot  Variant = "loot"
	VariantGames Variant = "games"
)

type Mode string

const (
	ModeDirect   Mode = "direct"
	ModeSelector Mode = "selector"
)

type SourceConfig struct {
	Name       string           // Derived from filename (without .yml extension)
	URL        string           `yaml:"url"`
	BaseURL    string           `yaml:"base_url"`
	Variant    Variant          `yaml:"variant"`
	Settings   SourceSettings   `yaml:"settings"`
	Extraction SourceExtraction `yaml:"extraction"`
}

type SourceSettings struct {
	Enabled    bool `yaml:"enabled"`
	MaxEntries int  `yaml:"max_entries"`
}

type SourceExtraction struct {
	ContentSelector *Selector `yaml:"content_selector"`
	ImageSelector   *Selector `yaml:"image_selector"`
	PageFallback    bool      `yaml:"page_fallback"` // fill missing description/image from the fetched page
}

func (c *SourceConfig) Mode() Mode {
	if c.Extraction.ContentSelector != nil {
		return ModeSelector
	}
	return ModeDirect
}

func (c *SourceConfig) Ref() SourceRef {
	return SourceRef{FeedURL: c.URL, BaseURL: c.BaseURL}
}

// TruncationPolicy controls when the description marker is appended.
type TruncationPolicy string

const (
	TruncationAlways        TruncationPolicy = "always"
	TruncationWhenTruncated TruncationPolicy = "when-truncated"
)
