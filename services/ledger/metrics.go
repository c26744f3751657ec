package ledger

import (
	"sync"

	"github.com/lifafa03/USDw-stablecoin-sub000/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// prometheusHealth tracks the number of health check calls
	prometheusHealth prometheus.Counter

	// prometheusTransactionsSubmitted counts submissions by outcome
	prometheusTransactionsSubmitted *prometheus.CounterVec

	// prometheusGovernanceSubmitted counts governance submissions by outcome
	prometheusGovernanceSubmitted *prometheus.CounterVec

	// prometheusSubmitDuration measures end to end submission time
	prometheusSubmitDuration prometheus.Histogram
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusHealth = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "ledger",
			Name:      "health",
			Help:      "Number of calls to the health endpoint",
		},
	)

	prometheusTransactionsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "ledger",
			Name:      "transactions_submitted",
			Help:      "Number of transactions submitted to the ledger",
		},
		[]string{"outcome"},
	)

	prometheusGovernanceSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "ledger",
			Name:      "governance_submitted",
			Help:      "Number of governance actions submitted to the ledger",
		},
		[]string{"outcome"},
	)

	prometheusSubmitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "usdw",
			Subsystem: "ledger",
			Name:      "submit_duration",
			Help:      "Histogram of transaction submission time",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)
}
