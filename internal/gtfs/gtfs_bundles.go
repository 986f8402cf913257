package gtfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"validator.onebusaway.org/internal/config"
	"validator.onebusaway.org/internal/metrics"
	"validator.onebusaway.org/internal/report"
	"validator.onebusaway.org/internal/table"
	"validator.onebusaway.org/internal/utils"
)

// ErrFeedBackoff is returned when a feed is skipped because it is still backing off from
// earlier failures.
var ErrFeedBackoff = errors.New("feed is backing off after previous failures")

// ErrFeedTooLarge is returned when a download exceeds maxFeedSize.
var ErrFeedTooLarge = errors.New("feed exceeds maximum size")

// maxFeedSize caps the size of a downloaded feed.
var maxFeedSize int64 = 512 << 20

// downloadFeed fetches a zipped feed from source.URL.
//
// A successful download is written to cacheDir (when set) so that a later failure can fall
// back to it. The returned bool is true when the data comes from the cache.
func downloadFeed(ctx context.Context, client *http.Client, source config.FeedSource, cacheDir string, maxRetries int, logger *slog.Logger) ([]byte, bool, error) {
	data, err := fetchFeed(ctx, client, source, maxRetries)
	if err == nil {
		if cacheDir != "" {
			cachePath := filepath.Join(cacheDir, utils.CachedFeedFileName(source.Name, source.URL))
			if writeErr := os.WriteFile(cachePath, data, 0o644); writeErr != nil {
				logger.Warn("Failed to cache GTFS feed", "feed", source.Name, "path", cachePath, "error", writeErr)
			}
		}
		return data, false, nil
	}

	if cacheDir == "" {
		return nil, false, err
	}
	cachedPath, cacheErr := utils.GetLastCachedFile(cacheDir, source.Name)
	if cacheErr != nil {
		return nil, false, err
	}
	// #nosec G304 -- path comes from our own cache directory
	cached, cacheErr := os.ReadFile(cachedPath)
	if cacheErr != nil {
		return nil, false, errors.Join(err, cacheErr)
	}
	logger.Warn("Download failed, using cached GTFS feed", "feed", source.Name, "path", cachedPath, "error", err)
	return cached, true, nil
}

func fetchFeed(ctx context.Context, client *http.Client, source config.FeedSource, maxRetries int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", source.URL, err)
	}
	if source.AuthHeaderKey != "" && source.AuthHeaderValue != "" {
		req.Header.Set(source.AuthHeaderKey, source.AuthHeaderValue)
	}

	resp, err := config.DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", source.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status %d when downloading GTFS feed from %s", resp.StatusCode, source.URL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read GTFS feed response body from %s: %w", source.URL, err)
	}
	if int64(len(data)) > maxFeedSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrFeedTooLarge, source.URL, maxFeedSize)
	}
	return data, nil
}

// readFeed loads source from the network or the local filesystem. A local path may be a zip
// file or a directory of .txt files.
func readFeed(ctx context.Context, client *http.Client, source config.FeedSource, cacheDir string, maxRetries int, logger *slog.Logger) (*table.Feed, error) {
	if source.IsRemote() {
		data, _, err := downloadFeed(ctx, client, source, cacheDir, maxRetries, logger)
		if err != nil {
			return nil, err
		}
		return LoadFeedFromZip(source.Name, data)
	}

	info, err := os.Stat(source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GTFS feed %s: %w", source.Path, err)
	}
	if info.IsDir() {
		return LoadFeedFromDir(source.Name, source.Path)
	}
	data, err := os.ReadFile(source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read GTFS feed %s: %w", source.Path, err)
	}
	return LoadFeedFromZip(source.Name, data)
}

// loadFeed reads source and stores the result, honoring and updating the feed's backoff.
func loadFeed(ctx context.Context, client *http.Client, source config.FeedSource, feedStore *FeedStore, backoffs *config.BackoffStore, cacheDir string, maxRetries int, logger *slog.Logger) (*table.Feed, error) {
	if backoffs.ShouldSkip(source.Name, time.Now()) {
		next, _ := backoffs.NextRetryAt(source.Name)
		logger.Debug("Skipping GTFS feed in backoff", "feed", source.Name, "next_retry_at", next)
		return nil, ErrFeedBackoff
	}

	start := time.Now()
	feed, err := readFeed(ctx, client, source, cacheDir, maxRetries, logger)
	if err != nil {
		backoffs.UpdateBackoff(source.Name)
		metrics.RecordFeedLoadFailure(source.Name)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags: report.FeedTags(source.Name),
			ExtraContext: map[string]interface{}{
				"url":  source.URL,
				"path": source.Path,
			},
			Level: sentry.LevelError,
		})
		logger.Error("Failed to load GTFS feed", "feed", source.Name, "error", err)
		return nil, fmt.Errorf("failed to load feed %q: %w", source.Name, err)
	}

	backoffs.ResetBackoff(source.Name)
	feedStore.Set(feed)
	logger.Info("Loaded GTFS feed",
		"feed", source.Name,
		"routes", feed.Routes.EntityCount(),
		"stop_times", feed.StopTimes.EntityCount(),
		"duration", time.Since(start),
	)
	return feed, nil
}

// loadFeeds loads every source concurrently and returns the feeds that loaded, in source order.
// Failures are handled and reported per feed.
func loadFeeds(ctx context.Context, sources []config.FeedSource, load func(context.Context, config.FeedSource) (*table.Feed, error)) []*table.Feed {
	loaded := make([]*table.Feed, len(sources))
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if feed, err := load(ctx, source); err == nil {
				loaded[i] = feed
			}
		}()
	}
	wg.Wait()

	feeds := make([]*table.Feed, 0, len(loaded))
	for _, f := range loaded {
		if f != nil {
			feeds = append(feeds, f)
		}
	}
	return feeds
}

// refreshFeeds loads the current sources right away and then on every tick of interval,
// handing each loaded feed to onLoaded. It returns when ctx is cancelled.
func refreshFeeds(ctx context.Context, sources func() []config.FeedSource, interval time.Duration, logger *slog.Logger, load func(context.Context, config.FeedSource) (*table.Feed, error), onLoaded func(context.Context, *table.Feed)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		logger.Info("Refreshing GTFS feeds")
		for _, feed := range loadFeeds(ctx, sources(), load) {
			if ctx.Err() != nil {
				break
			}
			onLoaded(ctx, feed)
		}

		select {
		case <-ctx.Done():
			logger.Info("Stopping GTFS feed refresh routine")
			return
		case <-ticker.C:
		}
	}
}
