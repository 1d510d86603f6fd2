// Package telemetry exposes Prometheus metrics for the resolution
// pipeline.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catres_resolutions_total",
			Help: "Total number of resolutions by terminal source",
		},
		[]string{"source"},
	)

	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catres_resolution_duration_seconds",
			Help:    "Duration of a single resolution",
			Buckets: prometheus.DefBuckets,
		},
	)

	ExternalCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catres_external_calls_total",
			Help: "External suggestion calls by outcome",
		},
		[]string{"status"},
	)

	ExternalBudgetRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catres_external_budget_remaining",
			Help: "Remaining external calls in the current day window",
		},
	)

	UnknownPatternsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catres_unknown_patterns_total",
			Help: "Queries that fell through to the fallback category",
		},
	)

	CorrectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catres_corrections_total",
			Help: "Manual corrections applied",
		},
	)
)
