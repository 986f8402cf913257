package app

import (
	"log/slog"
	"net/http"

	"validator.onebusaway.org/internal/config"
	"validator.onebusaway.org/internal/gtfs"
	"validator.onebusaway.org/internal/validator"
)

// Application wires the services behind the HTTP API and the background validation loop.
type Application struct {
	ConfigService     *config.ConfigService
	GtfsService       *gtfs.GtfsService
	ValidationService *validator.ValidationService
	Logger            *slog.Logger
	Version           string
}

// New creates and wires all dependencies for the Application.
// cacheDir keeps the last good download of each remote feed; empty disables caching.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, version, cacheDir string) *Application {
	feedStore := gtfs.NewFeedStore()
	backoffStore := config.NewBackoffStore()

	configService := config.NewConfigService(logger, client, cfg)
	gtfsService := gtfs.NewGtfsService(feedStore, backoffStore, logger, client, cacheDir)
	runner := validator.NewRunner(validator.DefaultRegistry(), cfg.Parallelism, logger)
	validationService := validator.NewValidationService(runner, validator.NewResultStore(), logger)

	return &Application{
		ConfigService:     configService,
		GtfsService:       gtfsService,
		ValidationService: validationService,
		Logger:            logger,
		Version:           version,
	}
}
