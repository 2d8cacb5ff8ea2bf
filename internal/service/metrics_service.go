package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/newsroom-console/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	refreshTotal     *prometheus.CounterVec
	storageLatency   prometheus.Observer
	storageHitRatio  prometheus.Gauge
	importRows       *prometheus.CounterVec
	votesTotal       prometheus.Counter

	requestCount          uint64
	requestDurationTotal  uint64
	upstreamCount         uint64
	upstreamDurationTotal uint64
	refreshCount          uint64
	refreshFailureCount   uint64
	storageHitCount       uint64
	storageMissCount      uint64
	importedRowCount      uint64
	failedRowCount        uint64
	voteCount             uint64
}

// NewMetricsService registers the gateway collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of calls to the news API",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	refreshTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_token_refresh_total",
		Help: "Silent access token refresh attempts",
	}, []string{"outcome"})

	storageLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "browser_storage_latency_seconds",
		Help:    "Latency for browser storage lookups",
		Buckets: prometheus.DefBuckets,
	})

	storageHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "browser_storage_hit_ratio",
		Help: "Ratio of storage hits to total storage lookups",
	})

	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_import_rows_total",
		Help: "Rows reported by the bulk import endpoint",
	}, []string{"result"})

	votesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "poll_votes_total",
		Help: "Votes accepted by the news API",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, upstreamDuration, refreshTotal, storageLatency, storageHitRatio, importRows, votesTotal, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		upstreamDuration: upstreamDuration,
		refreshTotal:     refreshTotal,
		storageLatency:   storageLatency,
		storageHitRatio:  storageHitRatio,
		importRows:       importRows,
		votesTotal:       votesTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveUpstream records one call to the news API. Status 0 means the call
// never got a response.
func (m *MetricsService) ObserveUpstream(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(method, upstreamRoute(path), fmt.Sprintf("%d", status)).Observe(elapsed.Seconds())
	atomic.AddUint64(&m.upstreamCount, 1)
	atomic.AddUint64(&m.upstreamDurationTotal, uint64(elapsed.Nanoseconds()))
}

// ObserveRefresh counts silent refresh attempts.
func (m *MetricsService) ObserveRefresh(success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
		atomic.AddUint64(&m.refreshFailureCount, 1)
	}
	m.refreshTotal.WithLabelValues(outcome).Inc()
	atomic.AddUint64(&m.refreshCount, 1)
}

// RecordStorageLookup records storage hit/miss metrics and updates the hit ratio.
func (m *MetricsService) RecordStorageLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.storageLatency.Observe(duration.Seconds())
	if hit {
		atomic.AddUint64(&m.storageHitCount, 1)
	} else {
		atomic.AddUint64(&m.storageMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.storageHitCount)
	total := hits + atomic.LoadUint64(&m.storageMissCount)
	if total > 0 {
		m.storageHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordImportOutcome counts rows by server verdict.
func (m *MetricsService) RecordImportOutcome(successful, failed int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("successful").Add(float64(successful))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
	atomic.AddUint64(&m.importedRowCount, uint64(successful))
	atomic.AddUint64(&m.failedRowCount, uint64(failed))
}

// RecordVote counts an accepted vote.
func (m *MetricsService) RecordVote() {
	if m == nil {
		return
	}
	m.votesTotal.Inc()
	atomic.AddUint64(&m.voteCount, 1)
}

// Snapshot returns aggregated metrics suitable for the status endpoint.
func (m *MetricsService) Snapshot() models.MetricsSnapshot {
	if m == nil {
		return models.MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	upstream := atomic.LoadUint64(&m.upstreamCount)
	hits := atomic.LoadUint64(&m.storageHitCount)
	lookups := hits + atomic.LoadUint64(&m.storageMissCount)

	snapshot := models.MetricsSnapshot{
		RequestsTotal:   requests,
		UpstreamCalls:   upstream,
		Refreshes:       atomic.LoadUint64(&m.refreshCount),
		RefreshFailures: atomic.LoadUint64(&m.refreshFailureCount),
		ImportedRows:    atomic.LoadUint64(&m.importedRowCount),
		FailedRows:      atomic.LoadUint64(&m.failedRowCount),
		Votes:           atomic.LoadUint64(&m.voteCount),
		Goroutines:      runtime.NumGoroutine(),
		GeneratedAt:     time.Now().UTC(),
	}
	if requests > 0 {
		snapshot.AverageRequestDurationMs = float64(atomic.LoadUint64(&m.requestDurationTotal)) / float64(requests) / float64(time.Millisecond)
	}
	if upstream > 0 {
		snapshot.AverageUpstreamDurationMs = float64(atomic.LoadUint64(&m.upstreamDurationTotal)) / float64(upstream) / float64(time.Millisecond)
	}
	if lookups > 0 {
		snapshot.StorageHitRatio = float64(hits) / float64(lookups)
	}
	return snapshot
}

var staticSegments = map[string]struct{}{
	"users": {}, "register": {}, "login": {}, "logout": {}, "refresh-token": {},
	"current-user": {}, "change-password": {}, "update-account": {}, "avatar": {},
	"cover-image": {}, "articles": {}, "admin": {}, "bulk-upload": {}, "view": {},
	"polls": {}, "active": {}, "vote": {}, "comments": {},
}

// upstreamRoute collapses slugs and ids so metric labels stay bounded.
func upstreamRoute(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		if _, ok := staticSegments[segment]; !ok {
			segments[i] = ":param"
		}
	}
	return "/" + strings.Join(segments, "/")
}
