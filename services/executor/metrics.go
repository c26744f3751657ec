package executor

import (
	"sync"

	"github.com/lifafa03/USDw-stablecoin-sub000/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// prometheusTransactionsApplied counts committed transactions by kind
	prometheusTransactionsApplied *prometheus.CounterVec

	// prometheusApplyDuration measures end to end apply time
	prometheusApplyDuration prometheus.Histogram

	// prometheusInvariantViolations counts halts triggered by the executor
	prometheusInvariantViolations prometheus.Counter
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusTransactionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "executor",
			Name:      "transactions_applied",
			Help:      "Number of transactions committed to the ledger",
		},
		[]string{"kind"},
	)

	prometheusApplyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "usdw",
			Subsystem: "executor",
			Name:      "apply_duration",
			Help:      "Histogram of transaction apply time",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)

	prometheusInvariantViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "executor",
			Name:      "invariant_violations",
			Help:      "Number of invariant violations that halted the executor",
		},
	)
}
