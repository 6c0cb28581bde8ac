// Package metrics registers the service's Prometheus metrics and serves them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the subset the handlers and middleware depend on.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordCourseCreated()
	RecordWebhookEvent(eventType, outcome string)
	RecordGuardDecision(action string)
}

type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	coursesCreated  prometheus.Counter
	webhookEvents   *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnify_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnify_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		coursesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learnify_courses_created_total",
			Help: "Courses successfully created.",
		}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnify_webhook_events_total",
			Help: "Identity webhook events by type and outcome.",
		}, []string{"type", "outcome"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnify_guard_decisions_total",
			Help: "Router guard decisions by action.",
		}, []string{"action"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.coursesCreated,
		c.webhookEvents,
		c.guardDecisions,
	)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordCourseCreated() {
	c.coursesCreated.Inc()
}

// RecordWebhookEvent counts one delivery. outcome is created, updated, ignored or an error kind.
func (c *Collector) RecordWebhookEvent(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	c.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (c *Collector) RecordGuardDecision(action string) {
	c.guardDecisions.WithLabelValues(action).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where metrics are not wired, mostly tests.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordCourseCreated()                             {}
func (Nop) RecordWebhookEvent(string, string)                {}
func (Nop) RecordGuardDecision(string)                       {}
