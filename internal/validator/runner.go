package validator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"
	"validator.onebusaway.org/internal/metrics"
	"validator.onebusaway.org/internal/notice"
	"validator.onebusaway.org/internal/table"
)

// ExecutionError is returned by Runner.Run when a validator panics.
// It signals a bug in the validator, not a problem in the data.
type ExecutionError struct {
	Validator string
	Value     any
	Stack     []byte
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("validator %s failed: %v", e.Validator, e.Value)
}

// Unwrap exposes the panic value when the validator panicked with an error.
func (e *ExecutionError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Runner executes every validator of a Registry against a feed.
type Runner struct {
	registry    *Registry
	parallelism int
	logger      *slog.Logger
}

// NewRunner creates a Runner. A parallelism below 1 defaults to the number of CPUs.
// A nil logger falls back to slog.Default().
func NewRunner(registry *Registry, parallelism int, logger *slog.Logger) *Runner {
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{registry: registry, parallelism: parallelism, logger: logger}
}

// Run validates feed and returns all notices.
//
// Validators run concurrently, each into its own container; the containers are merged in
// registration order, so the result is the same for every run over the same feed.
// A panicking validator fails the whole run with an *ExecutionError and no notices are
// returned. ctx is only checked before a validator starts.
func (r *Runner) Run(ctx context.Context, feed *table.Feed) (*notice.Container, error) {
	feed.BuildIndexes()

	entries := r.registry.entries
	results := make([]*notice.Container, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			container := notice.NewContainer()
			if err := r.runValidator(entry, feed, container); err != nil {
				return err
			}
			results[i] = container
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := notice.NewContainer()
	for _, c := range results {
		merged.AddAll(c)
	}
	return merged, nil
}

func (r *Runner) runValidator(entry registryEntry, feed *table.Feed, container *notice.Container) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &ExecutionError{Validator: entry.name, Value: v, Stack: debug.Stack()}
		}
	}()

	start := time.Now()
	entry.factory(feed).Validate(container)
	elapsed := time.Since(start)

	metrics.ObserveValidatorDuration(entry.name, elapsed)
	r.logger.Debug("validator finished", "feed", feed.Name, "validator", entry.name, "notices", container.Len(), "duration", elapsed)
	return nil
}
