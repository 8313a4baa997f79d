package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics exposes per-route request instruments.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payflow_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Metrics exposes application-level instruments.
type Metrics struct {
	paymentEvents *prometheus.CounterVec
	providerCalls *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		paymentEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_payment_events_total",
			Help: "Webhook events applied by provider and event type.",
		}, []string{"provider", "event_type"}),
		providerCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_provider_calls_total",
			Help: "Outbound provider operations by provider, operation and outcome.",
		}, []string{"provider", "operation", "outcome"}),
	}
}

// RecordPaymentEvent increments webhook event counts.
func (m *Metrics) RecordPaymentEvent(provider, eventType string) {
	if m == nil {
		return
	}
	m.paymentEvents.WithLabelValues(
		strings.TrimSpace(provider),
		strings.TrimSpace(eventType),
	).Inc()
}

// RecordProviderCall increments outbound provider call counts.
func (m *Metrics) RecordProviderCall(provider, operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.providerCalls.WithLabelValues(
		strings.TrimSpace(provider),
		strings.TrimSpace(operation),
		outcome,
	).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
