package report

import (
	"os"
	"runtime"

	"github.com/getsentry/sentry-go"
)

// ConfigureScope tags every event with the deployment and the machine it runs on.
func ConfigureScope(env, version string) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(map[string]string{
			"env":         env,
			"app_version": version,
			"go_version":  runtime.Version(),
			"goos":        runtime.GOOS,
		})
		scope.SetContext("runtime_info", map[string]interface{}{
			"hostname":   hostname,
			"num_cpu":    runtime.NumCPU(),
			"gomaxprocs": runtime.GOMAXPROCS(0),
		})
	})
}

// SentryReportOptions provides optional data for reporting.
// Fingerprint overrides Sentry's grouping; validator panics are grouped by validator name.
type SentryReportOptions struct {
	ExtraContext map[string]interface{}
	Tags         map[string]string
	Level        sentry.Level
	Fingerprint  []string
}

// ReportError reports err at level, sentry.LevelError when omitted.
func ReportError(err error, levels ...sentry.Level) {
	opts := SentryReportOptions{}
	if len(levels) > 0 {
		opts.Level = levels[0]
	}
	ReportErrorWithSentryOptions(err, opts)
}

// ReportErrorWithSentryOptions reports err in a scope of its own. A nil err is ignored.
func ReportErrorWithSentryOptions(err error, opts SentryReportOptions) {
	if err == nil {
		return
	}

	level := opts.Level
	if level == "" {
		level = sentry.LevelError
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetTags(opts.Tags)
		if len(opts.ExtraContext) > 0 {
			scope.SetContext("extra", opts.ExtraContext)
		}
		if len(opts.Fingerprint) > 0 {
			scope.SetFingerprint(opts.Fingerprint)
		}
		sentry.CaptureException(err)
	})
}

// FeedTags returns the tags of an error concerning feed, plus any extra key/value pairs.
func FeedTags(feed string, keyValues ...string) map[string]string {
	tags := map[string]string{"feed": feed}
	for i := 0; i+1 < len(keyValues); i += 2 {
		tags[keyValues[i]] = keyValues[i+1]
	}
	return tags
}
