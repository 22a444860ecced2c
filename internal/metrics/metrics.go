// Package metrics declares the Prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Calculations counts profit analyses by financing type and outcome
	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_calculations_total",
			Help: "Number of profit analyses computed",
		},
		[]string{"financing_type", "status"},
	)

	// CalculationDuration observes how long a single analysis takes
	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_calculation_duration_seconds",
			Help:    "Duration of a single profit analysis",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"financing_type"},
	)

	// Comparisons counts multi-scenario comparison runs
	Comparisons = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_comparisons_total",
			Help: "Number of financing comparisons computed",
		},
		[]string{"status"},
	)

	// HTTPRequests counts API requests by endpoint and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "API requests by endpoint and status code",
		},
		[]string{"endpoint", "code"},
	)

	// StoredAnalyses counts persistence operations
	StoredAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_store_operations_total",
			Help: "Persistence operations on analysis records",
		},
		[]string{"operation", "status"},
	)
)
