package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// routingCalls tracks distance-matrix calls by outcome (ok, fallback).
	routingCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_routing_calls_total",
		Help: "Total number of distance resolutions by outcome",
	}, []string{"outcome"})

	// routingFallbacks tracks haversine fallbacks by failure reason.
	routingFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_routing_fallbacks_total",
		Help: "Total number of haversine fallbacks by reason",
	}, []string{"reason"})

	// routingDuration tracks the latency of distance-matrix calls.
	routingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_routing_call_duration_seconds",
		Help:    "Time taken by distance-matrix calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	// routingBreakerState is 0 closed, 1 half-open, 2 open.
	routingBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "store_routing_breaker_state",
		Help: "State of the routing circuit breaker (0 closed, 1 half-open, 2 open)",
	})

	// catalogRefreshDuration tracks the time taken to pull a catalog snapshot.
	catalogRefreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_catalog_refresh_duration_seconds",
		Help:    "Time taken to refresh the catalog by source",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"source"})

	// catalogRefreshErrors tracks failed catalog refreshes.
	catalogRefreshErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_catalog_refresh_errors_total",
		Help: "Total number of failed catalog refreshes by source",
	}, []string{"source"})

	// catalogStores tracks the number of stores in the live snapshot.
	catalogStores = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "store_catalog_stores",
		Help: "Number of stores in the current catalog snapshot",
	})

	// catalogAge tracks the age of the live snapshot.
	catalogAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "store_catalog_age_seconds",
		Help: "Age of the current catalog snapshot in seconds",
	})

	recommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_recommend_duration_seconds",
		Help:    "Time taken to produce a store recommendation",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	candidateCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_recommend_candidates_count",
		Help:    "Number of candidate stores scored per request",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500},
	})

	basketSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_recommend_items_count",
		Help:    "Number of items in recommendation requests",
		Buckets: []float64{0, 1, 5, 10, 20, 50},
	})
)

// Recorder provides methods to record store-service metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordRouting records a measured distance-matrix call.
func (m *Recorder) RecordRouting(duration time.Duration) {
	if m == nil {
		return
	}
	routingCalls.WithLabelValues("ok").Inc()
	routingDuration.Observe(duration.Seconds())
}

// RecordFallback records a haversine fallback and why it happened.
func (m *Recorder) RecordFallback(reason string) {
	if m == nil {
		return
	}
	routingCalls.WithLabelValues("fallback").Inc()
	routingFallbacks.WithLabelValues(reason).Inc()
}

// RecordBreakerState records the routing breaker state.
func (m *Recorder) RecordBreakerState(state int) {
	if m == nil {
		return
	}
	routingBreakerState.Set(float64(state))
}

// RecordCatalogRefresh records a catalog refresh attempt.
func (m *Recorder) RecordCatalogRefresh(source string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	catalogRefreshDuration.WithLabelValues(source).Observe(duration.Seconds())
	if !success {
		catalogRefreshErrors.WithLabelValues(source).Inc()
	}
}

// RecordCatalogSnapshot records the size and age of the live snapshot.
func (m *Recorder) RecordCatalogSnapshot(stores int, age time.Duration) {
	if m == nil {
		return
	}
	catalogStores.Set(float64(stores))
	catalogAge.Set(age.Seconds())
}

// RecordRecommendation records one orchestrated recommendation.
func (m *Recorder) RecordRecommendation(duration time.Duration, candidates, items int) {
	if m == nil {
		return
	}
	recommendDuration.Observe(duration.Seconds())
	candidateCount.Observe(float64(candidates))
	basketSize.Observe(float64(items))
}
