// Package metrics provides Prometheus metrics for the API and the notify worker.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tenant_notify"

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	connections        prometheus.Gauge
	groupJoins         prometheus.Counter
	groupLeaves        prometheus.Counter
	deliveries         *prometheus.CounterVec
	resolutionFailures *prometheus.CounterVec
	queueMessages      *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		connections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "realtime_connections",
				Help:      "Number of realtime connections currently registered",
			},
		),
		groupJoins: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_group_joins_total",
				Help:      "Total number of group joins",
			},
		),
		groupLeaves: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_group_leaves_total",
				Help:      "Total number of group leaves",
			},
		),
		deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_deliveries_total",
				Help:      "Notification deliveries by target kind and result",
			},
			[]string{"target", "result"},
		),
		resolutionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tenant_resolution_failures_total",
				Help:      "Tenant resolution failures by transport and reason",
			},
			[]string{"transport", "reason"},
		),
		queueMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queue_messages_total",
				Help:      "Change event queue messages by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordHTTPRequest records metrics for an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) GroupJoined() {
	if m == nil {
		return
	}
	m.groupJoins.Inc()
}

func (m *Metrics) GroupLeft() {
	if m == nil {
		return
	}
	m.groupLeaves.Inc()
}

// RecordDelivery counts one delivery attempt to a single connection.
func (m *Metrics) RecordDelivery(target string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.deliveries.WithLabelValues(target, result).Inc()
}

func (m *Metrics) RecordResolutionFailure(transport, reason string) {
	if m == nil {
		return
	}
	m.resolutionFailures.WithLabelValues(transport, reason).Inc()
}

func (m *Metrics) RecordQueueMessage(outcome string) {
	if m == nil {
		return
	}
	m.queueMessages.WithLabelValues(outcome).Inc()
}

// Middleware records request count and latency per route template.
func Middleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
