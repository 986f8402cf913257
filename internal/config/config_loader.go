package config

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"validator.onebusaway.org/internal/report"
	"validator.onebusaway.org/internal/utils"
)

// feedsFile is the document layout of a configuration file.
type feedsFile struct {
	Feeds []FeedSource `yaml:"feeds" validate:"required,min=1,unique=Name,dive"`
}

var validate = validator.New()

// ValidateConfigFlags ensures that only one configuration source is specified:
// either a config file "--config-file", a remote config URL "--config-url".
//
// Returns an error if more than one input method is specified.
func ValidateConfigFlags(configFile, configURL *string) error {
	if *configFile == "" && *configURL == "" {
		return fmt.Errorf("no configuration provided, either --config-file or --config-url must be specified")
	}
	if (*configFile != "" && *configURL != "") || (*configFile != "" && len(flag.Args()) > 0) || (*configURL != "" && len(flag.Args()) > 0) {
		return fmt.Errorf("only one of --config-file or --config-url can be specified")
	}
	return nil
}

// parseFeeds decodes and validates a YAML feed list.
func parseFeeds(data []byte) ([]FeedSource, error) {
	var doc feedsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return doc.Feeds, nil
}

// refreshConfig periodically fetches the feed list from configURL and installs it in cfg.
//
// Failures are logged and reported to Sentry; the previous feed list stays in place and the
// loop keeps going until ctx is cancelled.
func refreshConfig(ctx context.Context, client *http.Client, configURL, configAuthUser, configAuthPass string, cfg *Config, logger *slog.Logger, interval time.Duration, maxRetries int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		newFeeds, err := loadConfigFromURL(ctx, client, configURL, configAuthUser, configAuthPass, maxRetries)
		if err != nil {
			logger.Error("Failed to refresh remote config", "error", err)
		} else {
			cfg.UpdateConfig(newFeeds)
			logger.Info("Successfully refreshed feed configuration", "feeds", len(newFeeds))
		}

		select {
		case <-ctx.Done():
			logger.Info("Stopping config refresh routine")
			return
		case <-ticker.C:
		}
	}
}

// loadConfigFromFile reads a YAML configuration file from disk and returns its feeds.
func loadConfigFromFile(filePath string) ([]FeedSource, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("file_path", filePath),
			Level: sentry.LevelError,
		})
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	feeds, err := parseFeeds(data)
	if err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("file_path", filePath),
			Level: sentry.LevelError,
		})
		return nil, err
	}

	return feeds, nil
}

// loadConfigFromURL fetches a YAML configuration from a remote HTTP(S) endpoint,
// using the provided client and optional basic authentication.
func loadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) ([]FeedSource, error) {
	reportErr := func(err error) {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("config_url", url),
			Level: sentry.LevelError,
		})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		reportErr(err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if authUser != "" && authPass != "" {
		req.SetBasicAuth(authUser, authPass)
	}

	resp, err := DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		reportErr(err)
		return nil, fmt.Errorf("failed to fetch remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("remote config returned status: %d", resp.StatusCode)
		reportErr(statusErr)
		return nil, statusErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		reportErr(err)
		return nil, fmt.Errorf("failed to read remote config: %w", err)
	}

	feeds, err := parseFeeds(data)
	if err != nil {
		reportErr(err)
		return nil, err
	}

	return feeds, nil
}
