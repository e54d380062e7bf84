package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkedin_login_attempts_total",
		Help: "Sign-in attempts by method and outcome",
	}, []string{"method", "outcome"})

	loginDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkedin_login_duration_seconds",
		Help:    "Time taken to establish a signed-in session",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"method"})
)
