// Package metrics exposes Prometheus instruments for the registration workflows
// and the HTTP layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"eventregistration/internal/domain"
)

const namespace = "eventregistration"

// Metrics implements services.Recorder and middleware.RequestObserver.
type Metrics struct {
	allocationAttempts prometheus.Histogram
	allocationsFailed  prometheus.Counter
	registrations      *prometheus.CounterVec
	deletions          *prometheus.CounterVec
	notificationsSent  prometheus.Counter
	mirrorFailures     *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New registers every instrument with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.allocationAttempts = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lucky_number_attempts",
			Help:      "store probes needed to draw an unused lucky number",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11), // 1 to 1024
		},
	)
	m.allocationsFailed = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lucky_number_exhausted_total",
			Help:      "draws that found no unused lucky number",
		},
	)
	m.registrations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "registration submissions by outcome (created or existing)",
		},
		[]string{"outcome"},
	)
	m.deletions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletions_total",
			Help:      "host deletions by failed step, empty when every step succeeded",
		},
		[]string{"failed_step"},
	)
	m.notificationsSent = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "reminder emails accepted by the relay",
		},
	)
	m.mirrorFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_failures_total",
			Help:      "spreadsheet mirror operations that failed",
		},
		[]string{"op"},
	)
	m.httpRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code",
		},
		[]string{"method", "code"},
	)
	m.httpDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	return m
}

func (m *Metrics) ObserveAllocation(attempts int, exhausted bool) {
	if exhausted {
		m.allocationsFailed.Inc()
		return
	}
	m.allocationAttempts.Observe(float64(attempts))
}

func (m *Metrics) RegistrationCompleted(created bool) {
	outcome := "existing"
	if created {
		outcome = "created"
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DeletionFinished(failed domain.DeletionStep) {
	m.deletions.WithLabelValues(string(failed)).Inc()
}

func (m *Metrics) NotificationsSent(n int) {
	m.notificationsSent.Add(float64(n))
}

func (m *Metrics) MirrorFailed(op string) {
	m.mirrorFailures.WithLabelValues(op).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}
