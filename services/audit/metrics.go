package audit

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// prometheusAuditEvents counts audit events by type
	prometheusAuditEvents *prometheus.CounterVec

	// prometheusInvariantViolations counts violations found by the checker
	prometheusInvariantViolations *prometheus.CounterVec
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusAuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "audit",
			Name:      "events",
			Help:      "Number of audit events recorded",
		},
		[]string{"type"},
	)

	prometheusInvariantViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usdw",
			Subsystem: "audit",
			Name:      "invariant_violations",
			Help:      "Number of invariant violations found by the audit checker",
		},
		[]string{"check"},
	)
}
