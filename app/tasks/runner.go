package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goodoffers/offer-comb/app/feed"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var _ SourceRunner = (*Runner)(nil)

type SourceResult struct {
	Source   string        `json:"source"`
	Records  int           `json:"records"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

type Summary struct {
	RunID   string         `json:"run_id"`
	Sources []SourceResult `json:"sources"`
	Records int            `json:"records"`
	Failed  int            `json:"failed"`
}

// Runner processes configured sources once, workerCount at a time, each under
// its own deadline.
type Runner struct {
	configCache   *feed.ConfigCache
	pipeline      *Pipeline
	workerCount   int
	sourceTimeout time.Duration
}

func NewRunner(configCache *feed.ConfigCache, pipeline *Pipeline, workerCount int, sourceTimeout time.Duration) *Runner {
	return &Runner{
		configCache:   configCache,
		pipeline:      pipeline,
		workerCount:   max(workerCount, 1),
		sourceTimeout: sourceTimeout,
	}
}

// RunAll processes every enabled source. The returned error joins the
// failures of individual sources; the summary is always complete.
func (r *Runner) RunAll(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	sourceConfigs := r.configCache.GetEnabledConfigs()

	slog.Info("Run started", "run_id", runID, "sources", len(sourceConfigs), "workers", r.workerCount)

	results := make([]SourceResult, len(sourceConfigs))

	var g errgroup.Group
	g.SetLimit(r.workerCount)
	for i, sourceConfig := range sourceConfigs {
		g.Go(func() error {
			results[i] = r.runSource(ctx, sourceConfig, runID)
			return nil
		})
	}
	_ = g.Wait()

	summary := &Summary{
		RunID:   runID,
		Sources: results,
		Records: lo.SumBy(results, func(res SourceResult) int { return res.Records }),
		Failed:  lo.CountBy(results, func(res SourceResult) bool { return res.Err != nil }),
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", res.Source, res.Err))
		}
	}

	slog.Info("Run completed",
		"run_id", runID,
		"sources", len(results),
		"records", summary.Records,
		"failed", summary.Failed)

	return summary, errors.Join(errs...)
}

// RunSource processes a single source by name, enabled or not.
func (r *Runner) RunSource(ctx context.Context, name string) (*SourceResult, error) {
	sourceConfig, err := r.configCache.GetConfig(name)
	if err != nil {
		return nil, err
	}

	result := r.runSource(ctx, sourceConfig, uuid.NewString())
	return &result, result.Err
}

func (r *Runner) runSource(ctx context.Context, sourceConfig *feed.SourceConfig, runID string) SourceResult {
	if r.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.sourceTimeout)
		defer cancel()
	}

	task := NewProcessFeedTask(sourceConfig, r.pipeline, runID)
	records, err := task.Run(ctx)

	result := SourceResult{
		Source:   task.GetSourceName(),
		Records:  len(records),
		Duration: task.GetDuration(),
		Err:      err,
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
