package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtrss_fetch_attempts_total",
		Help: "Feed fetch attempts, including retries",
	}, []string{"url"})

	FetchRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtrss_fetch_retries_total",
		Help: "Feed fetches that failed transiently and were retried",
	}, []string{"url"})

	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtrss_fetch_failures_total",
		Help: "Feeds that failed every attempt within a sweep",
	}, []string{"url"})

	EntriesMatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtrss_entries_matched_total",
		Help: "Entries that matched at least one keyword",
	}, []string{"url"})

	DuplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtrss_duplicates_skipped_total",
		Help: "Matched entries skipped because they were already notified",
	})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtrss_notification_deliveries_total",
		Help: "Notification delivery attempts by channel and outcome",
	}, []string{"channel", "outcome"})

	AlertQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courtrss_alert_queue_depth",
		Help: "Desktop alerts waiting for the UI worker",
	})

	DedupKeys = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courtrss_dedup_keys",
		Help: "Notification keys recorded since start",
	})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "courtrss_sweep_duration_seconds",
		Help:    "Duration of a full sweep over all feeds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
