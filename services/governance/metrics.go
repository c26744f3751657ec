package governance

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// prometheusGovernanceActions counts applied governance actions by type
	prometheusGovernanceActions *prometheus.CounterVec

	// prometheusGovernanceRejected counts rejected governance actions by type
	prometheusGovernanceRejected *prometheus.CounterVec
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusGovernanceActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "governance",
			Name:      "actions",
			Help:      "Number of governance actions applied",
		},
		[]string{"type"},
	)

	prometheusGovernanceRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "governance",
			Name:      "actions_rejected",
			Help:      "Number of governance actions rejected",
		},
		[]string{"type"},
	)
}
