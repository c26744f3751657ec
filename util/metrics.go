package util

import "github.com/prometheus/client_golang/prometheus"

var (
	// MetricsBucketsMicroSeconds is used for histograms that observe
	// durations in microseconds.
	MetricsBucketsMicroSeconds = prometheus.ExponentialBuckets(10, 4, 10)

	// MetricsBucketsSeconds is used for histograms that observe durations in
	// seconds.
	MetricsBucketsSeconds = prometheus.ExponentialBuckets(0.001, 4, 10)
)
