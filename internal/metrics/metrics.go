// Package metrics provides Prometheus metrics for the sirix engine
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the sirix engine
type Metrics struct {
	// First-tier cache metrics
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheEvictionsTotal prometheus.Counter
	CacheSizeEntries    prometheus.Gauge

	// Second-tier / drain metrics
	DrainOperationsTotal   prometheus.Counter
	DrainDurationSeconds   prometheus.Histogram
	DrainedPagesTotal      prometheus.Counter

	// Versioning / fold metrics
	FoldOperationsTotal   *prometheus.CounterVec
	FoldDurationSeconds   *prometheus.HistogramVec
	FetchPlanLengthTotal  prometheus.Histogram

	// Engine metrics
	TransactionsTotal   *prometheus.CounterVec
	RevisionCurrent     prometheus.Gauge
	EngineUptimeSeconds prometheus.Gauge
	EngineStartTime     time.Time
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		EngineStartTime: time.Now(),
	}

	m.CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sirix_cache_hits_total",
			Help: "Total number of page cache hits, by tier",
		},
		[]string{"tier"},
	)

	m.CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sirix_cache_misses_total",
			Help: "Total number of page cache misses, by tier",
		},
		[]string{"tier"},
	)

	m.CacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sirix_cache_evictions_total",
			Help: "Total number of first-tier cache evictions spilled to the second tier",
		},
	)

	m.CacheSizeEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sirix_cache_size_entries",
			Help: "Current number of entries held in the first-tier cache",
		},
	)

	m.DrainOperationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sirix_drain_operations_total",
			Help: "Total number of drain_to_secondary operations",
		},
	)

	m.DrainDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sirix_drain_duration_seconds",
			Help:    "Duration of drain_to_secondary operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.DrainedPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sirix_drained_pages_total",
			Help: "Total number of pages moved from the first tier to the second tier",
		},
	)

	m.FoldOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sirix_fold_operations_total",
			Help: "Total number of versioning fold operations, by strategy, operation and status",
		},
		[]string{"strategy", "operation", "status"},
	)

	m.FoldDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sirix_fold_duration_seconds",
			Help:    "Duration of versioning fold operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"strategy", "operation"},
	)

	m.FetchPlanLengthTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sirix_fetch_plan_length",
			Help:    "Number of fragments named by a fetch_plan call",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	m.TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sirix_transactions_total",
			Help: "Total number of page-read/page-write transactions, by kind and status",
		},
		[]string{"kind", "status"},
	)

	m.RevisionCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sirix_revision_current",
			Help: "Most recently committed revision number",
		},
	)

	m.EngineUptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sirix_engine_uptime_seconds",
			Help: "Engine uptime in seconds",
		},
	)

	go m.updateUptime()

	return m
}

// updateUptime periodically updates the engine uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.EngineUptimeSeconds.Set(time.Since(m.EngineStartTime).Seconds())
	}
}

// RecordCacheHit records a cache hit under the given tier label.
func (m *Metrics) RecordCacheHit(tier string) {
	m.CacheHitsTotal.WithLabelValues(tier).Inc()
}

// RecordCacheMiss records a cache miss for the given tier.
func (m *Metrics) RecordCacheMiss(tier string) {
	m.CacheMissesTotal.WithLabelValues(tier).Inc()
}

// RecordEviction records a first-tier eviction spilled to the second tier.
func (m *Metrics) RecordEviction() {
	m.CacheEvictionsTotal.Inc()
}

// RecordDrain records a completed drain_to_secondary call.
func (m *Metrics) RecordDrain(pageCount int, duration time.Duration) {
	m.DrainOperationsTotal.Inc()
	m.DrainDurationSeconds.Observe(duration.Seconds())
	m.DrainedPagesTotal.Add(float64(pageCount))
}

// RecordFold records a versioning fold (combine_for_read/combine_for_modify) call.
func (m *Metrics) RecordFold(strategy, operation, status string, duration time.Duration) {
	m.FoldOperationsTotal.WithLabelValues(strategy, operation, status).Inc()
	m.FoldDurationSeconds.WithLabelValues(strategy, operation).Observe(duration.Seconds())
}

// RecordFetchPlan records the length of a fetch_plan result.
func (m *Metrics) RecordFetchPlan(length int) {
	m.FetchPlanLengthTotal.Observe(float64(length))
}

// RecordTransaction records a completed page-read or page-write transaction.
func (m *Metrics) RecordTransaction(kind, status string) {
	m.TransactionsTotal.WithLabelValues(kind, status).Inc()
}

// UpdateRevision sets the current revision gauge.
func (m *Metrics) UpdateRevision(revision uint64) {
	m.RevisionCurrent.Set(float64(revision))
}
