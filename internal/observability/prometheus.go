package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"profilereview/internal/session"
)

var _ session.MetricsRecorder = (*Metrics)(nil)

// Metrics holds the Prometheus collectors for session operations and the
// backend HTTP API.
type Metrics struct {
	OperationLatency *prometheus.HistogramVec
	OperationResults *prometheus.CounterVec
	RequestLatency   *prometheus.HistogramVec
	RequestsTotal    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers collectors on reg. A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "profilereview_operation_duration_seconds",
			Help:    "Duration of profile operations by name",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		OperationResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profilereview_operations_total",
			Help: "Profile operations by name and outcome",
		}, []string{"operation", "status"}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "profilereview_http_request_duration_seconds",
			Help:    "Duration of backend HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profilereview_http_requests_total",
			Help: "Backend HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		gatherer: reg,
	}
}

// Observe implements session.MetricsRecorder.
func (m *Metrics) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if m == nil || operation == "" {
		return
	}
	m.OperationLatency.WithLabelValues(operation).Observe(duration.Seconds())
	m.OperationResults.WithLabelValues(operation, statusLabel(success)).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
