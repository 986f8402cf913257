package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidationRuns counts validation runs per feed, labelled "success" or "failure".
	ValidationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gtfs_validation_runs_total",
		Help: "Number of validation runs per feed and outcome",
	}, []string{"feed", "status"})

	ValidationNotices = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gtfs_validation_notices",
		Help: "Number of notices of each code emitted by the last successful validation run of a feed",
	}, []string{"feed", "code", "severity"})

	LastValidationTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gtfs_validation_last_success_timestamp_seconds",
		Help: "Unix time of the last successful validation run of a feed",
	}, []string{"feed"})
)

var (
	ValidatorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gtfs_validator_duration_seconds",
		Help:    "Time spent in a single validator",
		Buckets: prometheus.DefBuckets,
	}, []string{"validator"})
)

var (
	FeedEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gtfs_feed_entities",
		Help: "Number of rows loaded per GTFS file",
	}, []string{"feed", "file"})

	FeedLoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gtfs_feed_load_failures_total",
		Help: "Number of failed attempts to download or parse a feed",
	}, []string{"feed"})
)

var (
	// OutgoingLatency tracks feed and config downloads.
	OutgoingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_outgoing_request_duration_seconds",
		Help:    "Latency of outgoing HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"url", "method", "status"})
)
