package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultMaxRetries is the retry budget for configuration and feed downloads.
const DefaultMaxRetries = 3

// ConfigService holds dependencies and provides config operations.
type ConfigService struct {
	Logger *slog.Logger
	Client *http.Client
	Config *Config
}

// NewConfigService creates a new ConfigService instance with the provided logger and HTTP client.
func NewConfigService(logger *slog.Logger, client *http.Client, config *Config) *ConfigService {
	return &ConfigService{
		Logger: logger,
		Client: client,
		Config: config,
	}
}

// RefreshConfig blocks, reloading the feed list from url every interval until ctx is done.
func (cs *ConfigService) RefreshConfig(ctx context.Context, url, authUser, authPass string, interval time.Duration) {
	refreshConfig(ctx, cs.Client, url, authUser, authPass, cs.Config, cs.Logger, interval, DefaultMaxRetries)
}

// LoadFromFile loads the feed list from a YAML file and installs it.
func (cs *ConfigService) LoadFromFile(filePath string) error {
	feeds, err := LoadConfigFromFile(filePath)
	if err != nil {
		return err
	}
	cs.Config.UpdateConfig(feeds)
	return nil
}

// LoadFromURL loads the feed list from a remote YAML document and installs it.
func (cs *ConfigService) LoadFromURL(ctx context.Context, url, authUser, authPass string) error {
	feeds, err := LoadConfigFromURL(ctx, cs.Client, url, authUser, authPass)
	if err != nil {
		return err
	}
	cs.Config.UpdateConfig(feeds)
	return nil
}

// exported helper functions

func LoadConfigFromFile(filePath string) ([]FeedSource, error) {
	feeds, err := loadConfigFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from file %s: %w", filePath, err)
	}
	return feeds, nil
}

func LoadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string) ([]FeedSource, error) {
	feeds, err := loadConfigFromURL(ctx, client, url, authUser, authPass, DefaultMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from URL %s: %w", url, err)
	}
	return feeds, nil
}
