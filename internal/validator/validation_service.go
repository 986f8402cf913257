package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"validator.onebusaway.org/internal/metrics"
	"validator.onebusaway.org/internal/report"
	"validator.onebusaway.org/internal/table"
)

// ValidationService runs validations, publishes their metrics and keeps the latest result per feed.
type ValidationService struct {
	Runner  *Runner
	Results *ResultStore
	Logger  *slog.Logger
}

func NewValidationService(runner *Runner, results *ResultStore, logger *slog.Logger) *ValidationService {
	return &ValidationService{
		Runner:  runner,
		Results: results,
		Logger:  logger,
	}
}

// ValidateFeed runs every registered validator against a configured feed.
//
// On success the result is stored under feed.Name, published as metrics and returned. A
// validator failure is reported to Sentry at fatal level and returned as is; nothing is
// stored in that case.
func (vs *ValidationService) ValidateFeed(ctx context.Context, feed *table.Feed) (*Result, error) {
	result, err := vs.execute(ctx, feed, "scheduled")
	if err != nil {
		metrics.RecordValidationFailure(feed.Name)
		return nil, err
	}

	metrics.RecordFeedEntities(feed.Name, result.Entities)
	metrics.RecordValidationSuccess(feed.Name, result.Summary, result.StartedAt.Add(result.Duration))
	vs.Results.Set(result)
	return result, nil
}

// ValidateUpload validates a feed that is not part of the configuration. The result is only
// returned: it is neither stored nor exported with a feed label, so clients cannot replace
// the results of configured feeds or create metric series.
func (vs *ValidationService) ValidateUpload(ctx context.Context, feed *table.Feed) (*Result, error) {
	return vs.execute(ctx, feed, "upload")
}

func (vs *ValidationService) execute(ctx context.Context, feed *table.Feed, trigger string) (*Result, error) {
	runID := uuid.New()
	startedAt := time.Now()

	notices, err := vs.Runner.Run(ctx, feed)
	if err != nil {
		opts := report.SentryReportOptions{
			Tags: report.FeedTags(feed.Name, "trigger", trigger),
			ExtraContext: map[string]interface{}{
				"run_id": runID.String(),
			},
		}
		var execErr *ExecutionError
		if errors.As(err, &execErr) {
			opts.Level = sentry.LevelFatal
			opts.Tags = report.FeedTags(feed.Name, "trigger", trigger, "validator", execErr.Validator)
			opts.Fingerprint = []string{"validator-panic", execErr.Validator}
		}
		report.ReportErrorWithSentryOptions(err, opts)
		vs.Logger.Error("Validation run failed", "feed", feed.Name, "trigger", trigger, "run_id", runID, "error", err)
		return nil, fmt.Errorf("validation of feed %q failed: %w", feed.Name, err)
	}

	result := &Result{
		RunID:     runID,
		Feed:      feed.Name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Entities:  feed.EntityCounts(),
		Summary:   notices.Summaries(),
		Notices:   notices,
	}

	vs.Logger.Info("Validation run finished",
		"feed", feed.Name,
		"trigger", trigger,
		"run_id", runID,
		"notices", notices.Len(),
		"duration", result.Duration,
	)
	return result, nil
}
