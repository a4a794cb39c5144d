package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/card-order-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for the readiness endpoint.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	remoteDuration   *prometheus.HistogramVec
	notifications    *prometheus.CounterVec
	applicationsMade prometheus.Counter

	requestCount        uint64
	remoteCallCount     uint64
	remoteFailureCount  uint64
	notificationsSent   uint64
	notificationsFailed uint64
	startedAt           time.Time
}

// NewMetricsService registers core Prometheus collectors.
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

	remoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graph_request_duration_seconds",
		Help:    "Duration of Microsoft Graph calls",
		Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
	}, []string{"op", "outcome"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notification deliveries by template and outcome",
	}, []string{"template", "outcome"})

	applicationsMade := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "applications_submitted_total",
		Help: "Business-card applications accepted",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, remoteDuration, notifications, applicationsMade, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		remoteDuration:   remoteDuration,
		notifications:    notifications,
		applicationsMade: applicationsMade,
		startedAt:        time.Now(),
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveRemoteCall matches graph.Observer and records Graph latency.
func (m *MetricsService) ObserveRemoteCall(op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		atomic.AddUint64(&m.remoteFailureCount, 1)
	}
	m.remoteDuration.WithLabelValues(op, outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.remoteCallCount, 1)
}

// RecordNotification counts one delivery attempt outcome.
func (m *MetricsService) RecordNotification(template string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.notifications.WithLabelValues(template, "failed").Inc()
		atomic.AddUint64(&m.notificationsFailed, 1)
		return
	}
	m.notifications.WithLabelValues(template, "sent").Inc()
	atomic.AddUint64(&m.notificationsSent, 1)
}

// RecordSubmission counts an accepted application.
func (m *MetricsService) RecordSubmission() {
	if m == nil {
		return
	}
	m.applicationsMade.Inc()
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	return models.SystemMetrics{
		RequestsTotal:       atomic.LoadUint64(&m.requestCount),
		RemoteCalls:         atomic.LoadUint64(&m.remoteCallCount),
		RemoteFailures:      atomic.LoadUint64(&m.remoteFailureCount),
		NotificationsSent:   atomic.LoadUint64(&m.notificationsSent),
		NotificationsFailed: atomic.LoadUint64(&m.notificationsFailed),
		Goroutines:          runtime.NumGoroutine(),
		UptimeSeconds:       int64(time.Since(m.startedAt).Seconds()),
		GeneratedAt:         time.Now().UTC(),
	}
}
