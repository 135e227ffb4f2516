package wallet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// DeployerBalance tracks the deployer's native balance seen by the last preflight.
	DeployerBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seeder_wallet_deployer_balance",
		Help: "Deployer native balance at last preflight (ether units)",
	})

	// RPCErrorsTotal tracks failed preflight checks.
	RPCErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seeder_wallet_rpc_errors_total",
		Help: "Total number of failed preflight checks",
	})

	// PreflightDuration tracks the time taken by a preflight check.
	PreflightDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "seeder_wallet_preflight_duration_seconds",
		Help:    "Time taken by a preflight check (seconds)",
		Buckets: prometheus.DefBuckets,
	})
)
