package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/goccy/go-json"
	"validator.onebusaway.org/internal/app"
	"validator.onebusaway.org/internal/config"
	"validator.onebusaway.org/internal/gtfs"
	"validator.onebusaway.org/internal/notice"
	"validator.onebusaway.org/internal/report"
	"validator.onebusaway.org/internal/utils"
	"validator.onebusaway.org/internal/validator"
)

const version = "1.0.0"

// Exit codes of one-shot mode.
const (
	exitOK          = 0
	exitFailure     = 1
	exitErrorNotice = 2
)

const cacheDir = "cache"

type options struct {
	feed         string
	output       string
	failOnError  bool
	configFile   string
	configURL    string
	port         int
	env          string
	parallelism  int
	interval     time.Duration
	fetchTimeout time.Duration
}

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFailure)
	}

	var opts options
	flag.StringVar(&opts.feed, "feed", "", "Validate a single feed (zip file, directory or URL) and exit")
	flag.StringVar(&opts.output, "output", "", "Write the one-shot result to this file instead of stdout")
	flag.BoolVar(&opts.failOnError, "fail-on-error", false, "Exit with status 2 when the feed has ERROR notices")
	flag.StringVar(&opts.configFile, "config-file", "", "Path to a local YAML configuration file")
	flag.StringVar(&opts.configURL, "config-url", "", "URL to a remote YAML configuration file")
	flag.IntVar(&opts.port, "port", settings.Port, "API server port")
	flag.StringVar(&opts.env, "env", settings.Env, "Environment (development|staging|production)")
	flag.IntVar(&opts.parallelism, "parallelism", settings.Parallelism, "Number of validators run concurrently (0 = number of CPUs)")
	flag.DurationVar(&opts.interval, "interval", settings.ValidationInterval, "Time between validations of the configured feeds")
	flag.DurationVar(&opts.fetchTimeout, "fetch-timeout", 2*time.Minute, "Timeout of a single feed or config download")
	flag.Parse()

	if err := report.SetupSentry(settings.SentryDSN, opts.env, version); err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to initialize Sentry:", err)
	}
	defer report.FlushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.feed != "" {
		// stdout carries the result in one-shot mode
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		code := runOnce(ctx, opts, logger, app.NewPooledClient(opts.fetchTimeout))
		report.FlushSentry()
		os.Exit(code)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := runServer(ctx, opts, settings, logger); err != nil {
		report.ReportError(err, sentry.LevelFatal)
		report.FlushSentry()
		logger.Error(err.Error())
		os.Exit(exitFailure)
	}
}

// feedSource turns the -feed argument into a FeedSource named after its last path element.
func feedSource(arg string) config.FeedSource {
	name := strings.TrimSuffix(filepath.Base(strings.TrimRight(arg, "/")), filepath.Ext(arg))
	if name == "" || name == "." {
		name = "feed"
	}
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return config.FeedSource{Name: name, URL: arg}
	}
	return config.FeedSource{Name: name, Path: arg}
}

// runOnce validates a single feed, writes the result as JSON and returns the exit status.
func runOnce(ctx context.Context, opts options, logger *slog.Logger, client *http.Client) int {
	source := feedSource(opts.feed)

	gtfsService := gtfs.NewGtfsService(gtfs.NewFeedStore(), config.NewBackoffStore(), logger, client, "")
	feed, err := gtfsService.LoadFeed(ctx, source)
	if err != nil {
		logger.Error("Failed to load feed", "feed", opts.feed, "error", err)
		return exitFailure
	}

	runner := validator.NewRunner(validator.DefaultRegistry(), opts.parallelism, logger)
	vs := validator.NewValidationService(runner, validator.NewResultStore(), logger)
	result, err := vs.ValidateFeed(ctx, feed)
	if err != nil {
		return exitFailure
	}

	if err := writeResult(opts.output, result); err != nil {
		logger.Error("Failed to write result", "output", opts.output, "error", err)
		return exitFailure
	}

	if opts.failOnError && result.Notices.HasSeverity(notice.SeverityError) {
		return exitErrorNotice
	}
	return exitOK
}

func writeResult(path string, result *validator.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	// os.WriteFile reports close errors too
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result to %s: %w", path, err)
	}
	return nil
}

// startBackgroundJobs starts the periodic validation of the configured feeds and, for a remote
// configuration, its refresh. Both run every cfg.ValidationInterval until ctx is cancelled.
func startBackgroundJobs(ctx context.Context, application *app.Application, configURL string, settings config.Settings) {
	interval := application.ConfigService.Config.ValidationInterval
	application.StartValidationCollection(ctx, interval)

	if configURL != "" {
		go application.ConfigService.RefreshConfig(ctx, configURL, settings.ConfigAuthUser, settings.ConfigAuthPass, interval)
	}
}

// runServer loads the feed configuration, starts the periodic validation and serves the API
// until ctx is cancelled.
func runServer(ctx context.Context, opts options, settings config.Settings, logger *slog.Logger) error {
	if err := config.ValidateConfigFlags(&opts.configFile, &opts.configURL); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(exitFailure)
	}

	cfg := config.NewConfigFromSettings(settings)
	cfg.Port = opts.port
	cfg.Env = opts.env
	cfg.Parallelism = opts.parallelism
	cfg.ValidationInterval = opts.interval

	if err := utils.CreateCacheDirectory(cacheDir, logger); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	client := app.NewPooledClient(opts.fetchTimeout)
	application := app.New(cfg, logger, client, version, cacheDir)

	var err error
	if opts.configFile != "" {
		err = application.ConfigService.LoadFromFile(opts.configFile)
	} else {
		err = application.ConfigService.LoadFromURL(ctx, opts.configURL, settings.ConfigAuthUser, settings.ConfigAuthPass)
	}
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	startBackgroundJobs(ctx, application, opts.configURL, settings)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  time.Minute,
		WriteTimeout: 5 * time.Minute,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "feeds", len(cfg.GetFeeds()))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
