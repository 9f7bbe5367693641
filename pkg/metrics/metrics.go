package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the process registry and the instruments the services feed.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	autoAssignRuns     *prometheus.CounterVec
	autoAssignDuration prometheus.Histogram
	autoAssignLessons  prometheus.Counter
	rebalanceFailures  prometheus.Counter
}

// New builds a registry with runtime collectors plus the application
// instruments.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classflow_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "classflow_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		autoAssignRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classflow_auto_assign_runs_total",
			Help: "Auto-assign engine runs by outcome.",
		}, []string{"outcome"}),
		autoAssignDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "classflow_auto_assign_duration_seconds",
			Help:    "Auto-assign engine run latency.",
			Buckets: prometheus.DefBuckets,
		}),
		autoAssignLessons: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classflow_auto_assign_lessons_total",
			Help: "Lesson pairings changed by the auto-assign engine.",
		}),
		rebalanceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classflow_rebalance_failures_total",
			Help: "Per-class failures during block template rebalancing.",
		}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.autoAssignRuns,
		m.autoAssignDuration,
		m.autoAssignLessons,
		m.rebalanceFailures,
	)
	return m
}

// ObserveAutoAssign records one engine run.
func (m *Metrics) ObserveAutoAssign(duration time.Duration, assigned int, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.autoAssignRuns.WithLabelValues(outcome).Inc()
	m.autoAssignDuration.Observe(duration.Seconds())
	if assigned > 0 {
		m.autoAssignLessons.Add(float64(assigned))
	}
}

// IncRebalanceFailure counts a class that could not be synced to its template.
func (m *Metrics) IncRebalanceFailure() {
	m.rebalanceFailures.Inc()
}

// GinMiddleware instruments every route with request counts and latency.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
