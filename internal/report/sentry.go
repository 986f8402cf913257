package report

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SetupSentry initializes the Sentry client. An empty dsn leaves reporting disabled,
// which is what tests and local runs want.
func SetupSentry(dsn, env, version string) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          "gtfs-validator@" + version,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
	}); err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	ConfigureScope(env, version)
	return nil
}

// FlushSentry waits for buffered events to be delivered.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
