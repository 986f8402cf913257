package gtfs

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"validator.onebusaway.org/internal/config"
	"validator.onebusaway.org/internal/table"
)

type GtfsService struct {
	FeedStore    *FeedStore
	BackoffStore *config.BackoffStore
	Logger       *slog.Logger
	Client       *http.Client
	// CacheDir keeps the last good download of each remote feed. Empty disables caching.
	CacheDir   string
	MaxRetries int
}

func NewGtfsService(feedStore *FeedStore, backoffStore *config.BackoffStore, logger *slog.Logger, client *http.Client, cacheDir string) *GtfsService {
	return &GtfsService{
		FeedStore:    feedStore,
		BackoffStore: backoffStore,
		Logger:       logger,
		Client:       client,
		CacheDir:     cacheDir,
		MaxRetries:   config.DefaultMaxRetries,
	}
}

// LoadFeed loads one feed, from its URL or its local path, and stores it in the FeedStore.
// It returns ErrFeedBackoff without touching the network while the feed is backing off.
func (gs *GtfsService) LoadFeed(ctx context.Context, source config.FeedSource) (*table.Feed, error) {
	return loadFeed(ctx, gs.Client, source, gs.FeedStore, gs.BackoffStore, gs.CacheDir, gs.MaxRetries, gs.Logger)
}

// LoadFeeds loads every source concurrently and returns the feeds that loaded successfully.
func (gs *GtfsService) LoadFeeds(ctx context.Context, sources []config.FeedSource) []*table.Feed {
	return loadFeeds(ctx, sources, gs.LoadFeed)
}

// RefreshFeeds blocks, reloading the feeds returned by sources every interval and passing each
// loaded feed to onLoaded. sources is called on every cycle so that config refreshes apply.
func (gs *GtfsService) RefreshFeeds(ctx context.Context, sources func() []config.FeedSource, interval time.Duration, onLoaded func(context.Context, *table.Feed)) {
	refreshFeeds(ctx, sources, interval, gs.Logger, gs.LoadFeed, onLoaded)
}
