package telemetry

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests received, partitioned by method, route and status class.",
		},
		[]string{"method", "route", "status_class"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, partitioned by method, route and status class.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5},
		},
		[]string{"method", "route", "status_class"},
	)
)

// Domain metrics
var (
	payoutItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_items_total",
			Help: "Total number of payout items classified, partitioned by status.",
		},
		[]string{"status"}, // paid | failed | duplicate
	)

	payoutBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payout_batches_total",
			Help: "Total number of payout batches fully processed.",
		},
	)

	payoutBatchesFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_batches_failed_total",
			Help: "Total number of payout batches rejected or aborted, partitioned by reason.",
		},
		[]string{"reason"}, // reasons: validation | storage
	)

	payoutBatchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payout_batch_duration_seconds",
			Help:    "End-to-end duration of one batch call in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5, 10},
		},
	)
)

// Event publishing metrics
var (
	eventQueueCurrent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "event_queue_current",
			Help: "Current number of settlement events in the in-process publish queue (approximate).",
		},
	)

	eventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Total number of settlement events dropped because the publish queue was full.",
		},
	)

	eventsPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of settlement events published to Kafka.",
		},
	)
)

// InitMetrics called on startup
func InitMetrics() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		payoutItemsTotal,
		payoutBatchesTotal,
		payoutBatchesFailedTotal,
		payoutBatchDurationSeconds,
		eventQueueCurrent,
		eventsDroppedTotal,
		eventsPublishedTotal,
	)
}

// PrometheusMiddleware measures one HTTP request: increments counter and observes latency.
// It uses gin.Context.FullPath() to record the *route template* (e.g., /v1/payouts/batch).
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next() // execute handler chain

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := c.Writer.Status()
		statusClass := fmt.Sprintf("%dxx", status/100)

		httpRequestsTotal.WithLabelValues(method, route, statusClass).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, route, statusClass).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler exposes /metrics in Prometheus text exposition format.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
