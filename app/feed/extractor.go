package feed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/antchfx/htmlquery"
)

const (
	MaxDescriptionLength = 500
	TruncationMarker     = "..."
)

// PageFetcher retrieves an item page as UTF-8 HTML.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

type Extractor struct {
	pages      PageFetcher
	summaries  *ContentExtractor
	truncation TruncationPolicy
	now        func() time.Time
}

type ExtractorOption func(*Extractor)

func WithTruncation(policy TruncationPolicy) ExtractorOption {
	return func(e *Extractor) {
		e.truncation = policy
	}
}

func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		e.now = now
	}
}

func NewExtractor(pages PageFetcher, summaries *ContentExtractor, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		pages:      pages,
		summaries:  summaries,
		truncation: TruncationAlways,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run builds the record for one feed entry. The returned record is not yet
// classified. A nil record always comes with an error explaining the skip.
func (e *Extractor) Run(ctx context.Context, source *SourceConfig, entry Entry) (*Record, error) {
	if entry.Title == "" {
		return nil, ErrMissingTitle
	}

	var (
		link        string
		imageURL    string
		description = entry.Description
	)

	switch source.Mode() {
	case ModeSelector:
		page, err := e.fromPage(ctx, source, entry)
		if err != nil {
			return nil, err
		}
		link = page.link
		imageURL = page.imageURL
		if description == "" {
			description = page.excerpt
		}
	default:
		link = entry.Link
		imageURL, _ = entry.ImageEnclosure()
	}

	if link == "" {
		return nil, ErrMissingLink
	}

	return &Record{
		Title:       entry.Title,
		Description: TruncateDescription(description, e.truncation),
		Link:        link,
		ImageURL:    imageURL,
		ItemID:      ItemID(entry.Title, link),
		SourceURL:   source.BaseURL,
		PublishedAt: e.now().UTC(),
		Source:      source.Ref(),
	}, nil
}

type pageResult struct {
	link     string
	imageURL string
	excerpt  string
}

func (e *Extractor) fromPage(ctx context.Context, source *SourceConfig, entry Entry) (*pageResult, error) {
	if entry.Link == "" {
		return nil, ErrMissingLink
	}

	data, err := e.pages.FetchPage(ctx, entry.Link)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	doc, err := htmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	selector := source.Extraction.ContentSelector
	raw, ok := selector.First(doc)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSelectorMiss, selector)
	}

	result := &pageResult{
		link: ResolveURL(raw, source.BaseURL),
	}

	if imageSelector := source.Extraction.ImageSelector; imageSelector != nil {
		if rawImage, ok := imageSelector.First(doc); ok {
			result.imageURL = CleanImageURL(ResolveURL(rawImage, source.BaseURL))
		}
	}

	if source.Extraction.PageFallback && (entry.Description == "" || result.imageURL == "") {
		e.applyPageSummary(result, data, entry)
	}

	return result, nil
}

func (e *Extractor) applyPageSummary(result *pageResult, data []byte, entry Entry) {
	if e.summaries == nil {
		return
	}

	summary, err := e.summaries.Run(data, entry.Link)
	if err != nil {
		slog.Debug("Page summary unavailable", "url", entry.Link, "title", entry.Title, "error", err)
		return
	}

	result.excerpt = summary.Excerpt
	if result.imageURL == "" && summary.ImageURL != "" {
		result.imageURL = CleanImageURL(ResolveURL(summary.ImageURL, entry.Link))
	}
}

// TruncateDescription cuts text to MaxDescriptionLength characters. With
// TruncationAlways the marker is appended even to short text.
func TruncateDescription(text string, policy TruncationPolicy) string {
	runes := []rune(text)
	if len(runes) > MaxDescriptionLength {
		return string(runes[:MaxDescriptionLength]) + TruncationMarker
	}
	if policy == TruncationWhenTruncated {
		return text
	}
	return text + TruncationMarker
}
