package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedRequestsTotal tracks HTTP requests sent to the Gamma API.
	FeedRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seeder_feed_requests_total",
		Help: "Total number of Gamma API page requests",
	})

	// FeedRecordsTotal tracks market records received.
	FeedRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seeder_feed_records_total",
		Help: "Total number of market records received from the Gamma API",
	})

	// FeedErrorsTotal tracks feed failures by kind.
	FeedErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seeder_feed_errors_total",
		Help: "Total number of failed feed fetches, by kind",
	}, []string{"kind"})

	// FeedRequestDurationSeconds tracks feed fetch latency.
	FeedRequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "seeder_feed_request_duration_seconds",
		Help:    "Duration of feed fetches, including pagination",
		Buckets: prometheus.DefBuckets,
	})

	// FeedCacheServedTotal tracks fetches answered from the feed cache.
	FeedCacheServedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seeder_feed_cache_served_total",
		Help: "Total number of feed fetches served from cache",
	})
)
