// Package metrics exposes Prometheus counters for the dashboard service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "acm_dashboard"

type Metrics struct {
	ViewChanges      *prometheus.CounterVec
	TaskChanges      *prometheus.CounterVec
	RequestDecisions *prometheus.CounterVec
	Toasts           prometheus.Counter
	Emails           *prometheus.CounterVec
	Reminders        prometheus.Counter
	SessionsSwept    prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec

	reg prometheus.Registerer
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ViewChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_changes_total",
			Help:      "Top-level view transitions, by target view.",
		}, []string{"view"}),
		TaskChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_changes_total",
			Help:      "Applied task mutations, by action.",
		}, []string{"action"}),
		RequestDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_request_decisions_total",
			Help:      "Membership request decisions, by outcome.",
		}, []string{"status"}),
		Toasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toasts_total",
			Help:      "Toasts pushed to sessions.",
		}),
		Emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_enqueued_total",
			Help:      "Emails handed to the delivery queue, by kind.",
		}, []string{"kind"}),
		Reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deadline_reminders_total",
			Help:      "Deadline reminder batches delivered.",
		}),
		SessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Idle sessions evicted from memory.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reg: reg,
	}

	reg.MustRegister(
		m.ViewChanges,
		m.TaskChanges,
		m.RequestDecisions,
		m.Toasts,
		m.Emails,
		m.Reminders,
		m.SessionsSwept,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// TrackGauge registers a gauge read from fn at scrape time.
func (m *Metrics) TrackGauge(name, help string, fn func() float64) {
	m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// GinMiddleware counts requests by matched route, so path parameters do not
// explode the label space.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
