package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskwatch_api_calls_total",
			Help: "Total calls to the weather risk API",
		},
		[]string{"endpoint", "status"},
	)

	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "riskwatch_api_latency_seconds",
			Help:    "Weather risk API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskwatch_refreshes_total",
			Help: "Snapshot refresh attempts (initial load and scheduled ticks)",
		},
		[]string{"status"},
	)

	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskwatch_searches_total",
			Help: "Single-city search outcomes",
		},
		[]string{"result"},
	)
)
