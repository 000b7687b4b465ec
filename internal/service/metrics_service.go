package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/logistik-admin-api/internal/models"
)

const metricsNamespace = "logistik"

// Cache operation labels.
const (
	CacheOpGet        = "get"
	CacheOpSet        = "set"
	CacheOpInvalidate = "invalidate"
)

// Attendance batch results.
const (
	BatchResultSuccess  = "success"
	BatchResultInvalid  = "invalid"
	BatchResultRejected = "rejected"
)

// durationStat keeps a running count and total for snapshot averages.
type durationStat struct {
	count uint64
	nanos uint64
}

func (d *durationStat) add(duration time.Duration) {
	atomic.AddUint64(&d.count, 1)
	atomic.AddUint64(&d.nanos, uint64(duration.Nanoseconds()))
}

func (d *durationStat) load() (uint64, float64) {
	count := atomic.LoadUint64(&d.count)
	if count == 0 {
		return 0, 0
	}
	total := atomic.LoadUint64(&d.nanos)
	return count, float64(total) / float64(count) / float64(time.Millisecond)
}

// MetricsService owns the Prometheus registry of the API and keeps running
// totals for the JSON snapshot served on /system/metrics.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	cacheDuration   *prometheus.HistogramVec
	cacheHitRatio   prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec
	batches         *prometheus.CounterVec
	batchOperations *prometheus.CounterVec

	requests  durationStat
	dbQueries durationStat
	cacheHits uint64
	cacheMiss uint64
	saved     uint64
}

// NewMetricsService builds a registry with the API collectors plus the Go
// runtime and process collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		cacheDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operation_duration_seconds",
			Help:      "Redis cache latency by operation and result.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"op", "result"}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "hit_ratio",
			Help:      "Share of weekly attendance lookups served from cache.",
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency by query name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "attendance",
			Name:      "batches_total",
			Help:      "Attendance batches received, by result.",
		}, []string{"result"}),
		batchOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "attendance",
			Name:      "batch_operations_total",
			Help:      "Attendance date operations applied, by action.",
		}, []string{"action"}),
	}

	m.registry.MustRegister(
		m.requestDuration,
		m.cacheDuration,
		m.cacheHitRatio,
		m.dbQueryDuration,
		m.batches,
		m.batchOperations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: metricsNamespace}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
	m.requests.add(duration)
}

// RecordCacheLookup records a weekly attendance cache read.
func (m *MetricsService) RecordCacheLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		atomic.AddUint64(&m.cacheHits, 1)
	} else {
		atomic.AddUint64(&m.cacheMiss, 1)
	}
	m.cacheDuration.WithLabelValues(CacheOpGet, result).Observe(duration.Seconds())

	hits := atomic.LoadUint64(&m.cacheHits)
	if total := hits + atomic.LoadUint64(&m.cacheMiss); total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordCacheWrite records a cache set or invalidation.
func (m *MetricsService) RecordCacheWrite(op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.cacheDuration.WithLabelValues(op, result).Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(query string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	m.dbQueries.add(duration)
}

// RecordAttendanceBatch counts a processed batch and the operations it applied.
func (m *MetricsService) RecordAttendanceBatch(result string, updated, deleted int) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(result).Inc()
	if updated > 0 {
		m.batchOperations.WithLabelValues("update").Add(float64(updated))
	}
	if deleted > 0 {
		m.batchOperations.WithLabelValues("delete").Add(float64(deleted))
	}
	if result == BatchResultSuccess {
		atomic.AddUint64(&m.saved, 1)
	}
}

// Snapshot summarises the running totals.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHits)
	misses := atomic.LoadUint64(&m.cacheMiss)
	requests, avgRequestMs := m.requests.load()
	queries, avgQueryMs := m.dbQueries.load()

	snapshot := models.SystemMetrics{
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             queries,
		AverageDBQueryDurationMs: avgQueryMs,
		AttendanceBatches:        atomic.LoadUint64(&m.saved),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
	if total := hits + misses; total > 0 {
		snapshot.CacheHitRatio = float64(hits) / float64(total)
	}
	return snapshot
}
