package validator

import (
	"sync"

	"github.com/lifafa03/USDw-stablecoin-sub000/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// prometheusHealth tracks the number of health check calls
	prometheusHealth prometheus.Counter

	// prometheusInvalidTransactions counts invalid transactions by stage
	prometheusInvalidTransactions *prometheus.CounterVec

	// prometheusTransactionValidateTotal measures total validation time
	prometheusTransactionValidateTotal prometheus.Histogram
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
			Subsystem: "validator",
			Name:      "health",
			Help:      "Number of calls to the health endpoint",
		},
	)

	prometheusInvalidTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "validator",
			Name:      "invalid_transactions",
			Help:      "Number of transactions rejected by the validation pipeline",
		},
		[]string{"stage"},
	)

	prometheusTransactionValidateTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "usdw",
			Subsystem: "validator",
			Name:      "transactions_validate_total",
			Help:      "Histogram of total transaction validation",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)
}
