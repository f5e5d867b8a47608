// Package metrics provides Prometheus metrics for the validation engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jsonval"

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	// Cache metrics
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEvictions prometheus.Counter

	// Validation metrics
	Validations        *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
	Messages           *prometheus.CounterVec

	// Reference metrics
	RefLoads *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg means the
// metrics are created but not registered anywhere.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Validator set lookups served from the cache",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Validator sets built because they were not cached",
		}),
		CacheEvictions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Validator sets evicted from the cache",
		}),

		Validations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validation calls by outcome",
		}, []string{"outcome"}),
		ValidationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Duration of validation calls in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		Messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_messages_total",
			Help:      "Report messages recorded, by level",
		}, []string{"level"}),

		RefLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ref_loads_total",
			Help:      "External schema documents loaded for $ref, by result",
		}, []string{"result"}),
	}
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// RecordCacheEviction records an eviction.
func (m *Metrics) RecordCacheEviction() {
	if m == nil {
		return
	}
	m.CacheEvictions.Inc()
}

// RecordValidation records a finished validation call. outcome is one of
// "valid", "invalid" or "aborted".
func (m *Metrics) RecordValidation(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Validations.WithLabelValues(outcome).Inc()
	m.ValidationDuration.Observe(d.Seconds())
}

// RecordMessage records a report message at level.
func (m *Metrics) RecordMessage(level string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(level).Inc()
}

// RecordRefLoad records a load of an external schema document.
func (m *Metrics) RecordRefLoad(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RefLoads.WithLabelValues(result).Inc()
}
