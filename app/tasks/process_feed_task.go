package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goodoffers/offer-comb/app/database"
	"github.com/goodoffers/offer-comb/app/feed"
	"golang.org/x/sync/errgroup"
)

var _ TaskInterface = (*ProcessFeedTask)(nil)

// Pipeline holds the collaborators shared by every ProcessFeedTask.
// ItemRepo may be nil, in which case records are only returned.
type Pipeline struct {
	Fetcher          FeedFetcher
	Parser           *feed.Parser
	Extractor        *feed.Extractor
	Classifier       *feed.Classifier
	ItemRepo         database.ItemRepository
	EntryConcurrency int
}

type ProcessFeedTask struct {
	Task
	SourceConfig *feed.SourceConfig
	RunID        string
	pipeline     *Pipeline
}

func NewProcessFeedTask(sourceConfig *feed.SourceConfig, pipeline *Pipeline, runID string) *ProcessFeedTask {
	var sourceName string
	if sourceConfig != nil {
		sourceName = sourceConfig.Name
	}

	return &ProcessFeedTask{
		Task:         NewTask(TaskTypeProcessFeed, sourceName),
		SourceConfig: sourceConfig,
		RunID:        runID,
		pipeline:     pipeline,
	}
}

type entryResult struct {
	record  *feed.Record
	sinkErr error
}

// Run processes the first max_entries entries of the source feed and returns
// the emitted records in feed order. A feed that cannot be fetched or parsed
// yields no records and no error. The returned error joins sink failures, or
// reports an invalid source configuration.
func (t *ProcessFeedTask) Run(ctx context.Context) ([]feed.Record, error) {
	t.Start()

	if err := feed.ValidateConfig(t.SourceConfig); err != nil {
		slog.Error("Invalid source configuration", "source", t.SourceName, "error", err)
		return nil, err
	}

	data, err := t.pipeline.Fetcher.Fetch(ctx, t.SourceConfig.URL)
	if err != nil {
		slog.Error("Feed fetch failed", "source", t.SourceName, "url", t.SourceConfig.URL, "error", err)
		return []feed.Record{}, nil
	}

	_, entries, err := t.pipeline.Parser.Run(data)
	if err != nil {
		slog.Error("Feed parse failed", "source", t.SourceName, "url", t.SourceConfig.URL, "error", err)
		return []feed.Record{}, nil
	}

	if len(entries) > t.SourceConfig.Settings.MaxEntries {
		entries = entries[:t.SourceConfig.Settings.MaxEntries]
	}

	results := make([]entryResult, len(entries))

	var g errgroup.Group
	g.SetLimit(max(t.pipeline.EntryConcurrency, 1))
	for i, entry := range entries {
		g.Go(func() error {
			results[i] = t.processEntry(ctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	records := make([]feed.Record, 0, len(entries))
	var sinkErrs []error
	for _, result := range results {
		if result.record != nil {
			records = append(records, *result.record)
		}
		if result.sinkErr != nil {
			sinkErrs = append(sinkErrs, result.sinkErr)
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"run_id", t.RunID,
		"duration", t.GetDuration(),
		"total", len(entries),
		"emitted", len(records),
		"skipped", len(entries)-len(records)-len(sinkErrs),
		"sink_errors", len(sinkErrs))

	return records, errors.Join(sinkErrs...)
}

func (t *ProcessFeedTask) processEntry(ctx context.Context, entry feed.Entry) (result entryResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Entry processing panicked",
				"source", t.SourceName, "url", entry.Link, "title", entry.Title, "panic", r)
			result = entryResult{}
		}
	}()

	record, err := t.pipeline.Extractor.Run(ctx, t.SourceConfig, entry)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, feed.ErrSelectorMiss) {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "Entry skipped",
			"source", t.SourceName, "url", entry.Link, "title", entry.Title, "error", err)
		return entryResult{}
	}

	record.Category = t.pipeline.Classifier.Classify(record, t.SourceConfig)

	if t.pipeline.ItemRepo == nil {
		return entryResult{record: record}
	}

	if err := t.pipeline.ItemRepo.UpsertItem(ctx, toFeedItem(record, t.RunID)); err != nil {
		slog.Error("Failed to store record",
			"source", t.SourceName, "url", record.Link, "title", record.Title, "item_id", record.ItemID, "error", err)
		return entryResult{sinkErr: fmt.Errorf("failed to store item %s (%s): %w", record.ItemID, record.Link, err)}
	}

	return entryResult{record: record}
}

func toFeedItem(record *feed.Record, runID string) database.FeedItem {
	return database.FeedItem{
		ItemHash:    record.ItemID,
		Title:       record.Title,
		Description: record.Description,
		Link:        record.Link,
		ImageURL:    record.ImageURL,
		SourceURL:   record.SourceURL,
		FeedType:    string(record.Category),
		PubDate:     record.PublishedAt,
		FeedURL:     record.Source.FeedURL,
		BaseURL:     record.Source.BaseURL,
		RunID:       runID,
	}
}
