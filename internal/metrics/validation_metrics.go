package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"validator.onebusaway.org/internal/notice"
)

// RecordValidationSuccess publishes the outcome of a successful run.
//
// Notice gauges of the feed are reset first so codes that disappeared since the previous
// run stop being exported.
func RecordValidationSuccess(feed string, summaries []notice.Summary, finishedAt time.Time) {
	ValidationRuns.WithLabelValues(feed, "success").Inc()
	ValidationNotices.DeletePartialMatch(prometheus.Labels{"feed": feed})
	for _, s := range summaries {
		ValidationNotices.WithLabelValues(feed, s.Code, s.Severity.String()).Set(float64(s.Count))
	}
	LastValidationTimestamp.WithLabelValues(feed).Set(float64(finishedAt.Unix()))
}

func RecordValidationFailure(feed string) {
	ValidationRuns.WithLabelValues(feed, "failure").Inc()
}

func RecordFeedEntities(feed string, counts map[string]int) {
	for file, count := range counts {
		FeedEntities.WithLabelValues(feed, file).Set(float64(count))
	}
}

func RecordFeedLoadFailure(feed string) {
	FeedLoadFailures.WithLabelValues(feed).Inc()
}

func ObserveValidatorDuration(validator string, d time.Duration) {
	ValidatorDuration.WithLabelValues(validator).Observe(d.Seconds())
}
