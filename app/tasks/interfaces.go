package tasks

import (
	"context"
)

// FeedFetcher retrieves a feed document. Implemented by fetcher.Fetcher.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SourceRunner runs sources through the pipeline. Used by the API to trigger
// a single source on demand.
type SourceRunner interface {
	RunAll(ctx context.Context) (*Summary, error)
	RunSource(ctx context.Context, name string) (*SourceResult, error)
}
