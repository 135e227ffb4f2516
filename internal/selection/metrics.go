package selection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RecordsExaminedTotal tracks feed records passed to the normalizer.
	RecordsExaminedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seeder_selection_records_examined_total",
		Help: "Total number of feed records examined by the selector",
	})

	// RecordsRejectedTotal tracks rejected records by reason.
	RecordsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seeder_selection_records_rejected_total",
		Help: "Total number of feed records rejected, by reason",
	}, []string{"reason"})

	// MarketsSelectedTotal tracks markets accepted for rendering.
	MarketsSelectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seeder_selection_markets_selected_total",
		Help: "Total number of markets selected for deployment",
	})

	// RunsTotal tracks pipeline runs by status.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seeder_pipeline_runs_total",
		Help: "Total number of pipeline runs, by status",
	}, []string{"status"})

	// RunDurationSeconds tracks end-to-end pipeline latency.
	RunDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "seeder_pipeline_run_duration_seconds",
		Help:    "Duration of pipeline runs including the feed fetch",
		Buckets: prometheus.DefBuckets,
	})
)
