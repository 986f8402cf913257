package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// FeedSource describes where a GTFS feed is loaded from. Exactly one of URL and Path is set.
type FeedSource struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	URL  string `yaml:"url" json:"url,omitempty" validate:"omitempty,url,excluded_with=Path"`
	Path string `yaml:"path" json:"path,omitempty" validate:"required_without=URL"`

	// Optional header sent with the download, for feeds behind an API key.
	AuthHeaderKey   string `yaml:"auth_header_key" json:"-"`
	AuthHeaderValue string `yaml:"auth_header_value" json:"-"`
}

// IsRemote reports whether the feed is downloaded rather than read from disk.
func (f FeedSource) IsRemote() bool {
	return f.URL != ""
}

// Settings are the process-level options read from the environment.
type Settings struct {
	Port               int           `env:"VALIDATOR_PORT" envDefault:"4000"`
	Env                string        `env:"VALIDATOR_ENV" envDefault:"development"`
	Parallelism        int           `env:"VALIDATOR_PARALLELISM" envDefault:"0"`
	ValidationInterval time.Duration `env:"VALIDATOR_INTERVAL" envDefault:"30m"`
	SentryDSN          string        `env:"SENTRY_DSN"`
	ConfigAuthUser     string        `env:"CONFIG_AUTH_USER"`
	ConfigAuthPass     string        `env:"CONFIG_AUTH_PASS"`
}

// LoadSettings reads Settings from the environment, applying defaults for unset variables.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return s, nil
}

// Config holds all the configuration settings for our application.
type Config struct {
	Port               int
	Env                string
	Parallelism        int
	ValidationInterval time.Duration
	Mu                 sync.RWMutex
	Feeds              []FeedSource
}

// NewConfig creates a new instance of a Config struct.
func NewConfig(port int, env string, feeds []FeedSource) *Config {
	return &Config{
		Port:  port,
		Env:   env,
		Feeds: feeds,
	}
}

// NewConfigFromSettings builds a Config with the process settings and no feeds.
func NewConfigFromSettings(s Settings) *Config {
	cfg := NewConfig(s.Port, s.Env, nil)
	cfg.Parallelism = s.Parallelism
	cfg.ValidationInterval = s.ValidationInterval
	return cfg
}

// UpdateConfig safely replaces the configured feeds.
func (cfg *Config) UpdateConfig(newFeeds []FeedSource) {
	cfg.Mu.Lock()
	defer cfg.Mu.Unlock()
	cfg.Feeds = newFeeds
}

// GetFeeds returns a copy of the configured feeds.
// Other packages must use it instead of reading Feeds directly.
func (cfg *Config) GetFeeds() []FeedSource {
	cfg.Mu.RLock()
	defer cfg.Mu.RUnlock()
	return append([]FeedSource(nil), cfg.Feeds...)
}

// GetFeed looks up a configured feed by name.
func (cfg *Config) GetFeed(name string) (FeedSource, bool) {
	cfg.Mu.RLock()
	defer cfg.Mu.RUnlock()
	for _, f := range cfg.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return FeedSource{}, false
}
