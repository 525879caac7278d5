package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// PageSummary holds what readability could recover from an item page.
type PageSummary struct {
	Excerpt  string
	ImageURL string
}

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(data []byte, pageURL string) (*PageSummary, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	summary := &PageSummary{
		Excerpt:  strings.TrimSpace(article.Excerpt),
		ImageURL: strings.TrimSpace(article.Image),
	}
	if summary.Excerpt == "" {
		summary.Excerpt = strings.TrimSpace(article.TextContent)
	}

	slog.Debug("Page summary extracted",
		"url", pageURL,
		"title", article.Title,
		"excerpt_length", len(summary.Excerpt),
		"has_image", summary.ImageURL != "")

	return summary, nil
}
