package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the prometheus collectors exposed at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	alertRuns        *prometheus.CounterVec
	alertRunDuration *prometheus.HistogramVec
	alertOutcomes    *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		alertRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_alert_runs_total",
			Help: "Alert engine runs by job.",
		}, []string{"job"}),
		alertRunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_alert_run_duration_seconds",
			Help:    "Alert run duration by job.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"job"}),
		alertOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_alert_outcomes_total",
			Help: "Per-user alert outcomes by job and outcome.",
		}, []string{"job", "outcome"}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.alertRuns,
		m.alertRunDuration,
		m.alertOutcomes,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncAlertRun(job string) {
	m.alertRuns.WithLabelValues(job).Inc()
}

func (m *Metrics) ObserveAlertRun(job string, d time.Duration) {
	m.alertRunDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) IncAlertOutcome(job, outcome string) {
	m.alertOutcomes.WithLabelValues(job, outcome).Inc()
}

// GinMiddleware records request counters and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
