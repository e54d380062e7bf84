package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkedin_operations_total",
		Help: "Tool operations by operation and outcome",
	}, []string{"operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkedin_operation_duration_seconds",
		Help:    "End-to-end duration of tool operations",
		Buckets: prometheus.ExponentialBuckets(1, 2, 9),
	}, []string{"operation"})

	sessionsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkedin_browser_sessions_in_flight",
		Help: "Browser sessions currently open",
	})
)
