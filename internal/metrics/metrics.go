// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors used for monitoring the
// application: HTTP traffic, workflow transitions and the notification
// pipeline.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	StatusTransitions *prometheus.CounterVec
	NotificationJobs  *prometheus.CounterVec
	EmailsSent        *prometheus.CounterVec
	QueueDepth        prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered against the provided
// Registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "Total number of HTTP requests, labelled by method, route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		StatusTransitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_status_transitions_total",
			Help: "Total number of task status transitions, labelled by direction and outcome.",
		}, []string{"direction", "outcome"}),
		NotificationJobs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_notification_jobs_total",
			Help: "Total number of notification jobs, labelled by outcome.",
		}, []string{"outcome"}),
		EmailsSent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_emails_sent_total",
			Help: "Total number of assignment emails attempted, labelled by outcome.",
		}, []string{"outcome"}),
		QueueDepth: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "taskboard_job_queue_depth",
			Help: "Current number of jobs waiting in the in-memory queue.",
		}),
	}

	m.StatusTransitions.WithLabelValues("forward", "success")
	m.StatusTransitions.WithLabelValues("backward", "success")
	m.NotificationJobs.WithLabelValues("completed")
	m.NotificationJobs.WithLabelValues("failed")

	return m
}
