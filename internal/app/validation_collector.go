package app

import (
	"context"
	"time"

	"validator.onebusaway.org/internal/table"
)

// StartValidationCollection loads and validates every configured feed now and then every
// interval, in the background, until ctx is cancelled. The feed list is reread on each cycle.
func (app *Application) StartValidationCollection(ctx context.Context, interval time.Duration) {
	go app.GtfsService.RefreshFeeds(ctx, app.ConfigService.Config.GetFeeds, interval, app.validateLoadedFeed)
}

func (app *Application) validateLoadedFeed(ctx context.Context, feed *table.Feed) {
	// failures are logged and reported by the validation service
	_, _ = app.ValidationService.ValidateFeed(ctx, feed)
}
