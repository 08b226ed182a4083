package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ridejoy_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ridejoy_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	bookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridejoy_bookings_created_total",
		Help: "Total number of bookings captured from the booking form",
	})

	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ridejoy_booking_status_transitions_total",
		Help: "Count of booking status transitions by target status",
	}, []string{"status"})

	emailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ridejoy_emails_total",
		Help: "Count of notification sends by result (delivered, recorded, failed)",
	}, []string{"result"})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ridejoy_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	accountsProvisioned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridejoy_accounts_autoprovisioned_total",
		Help: "Count of accounts auto-created at booking time",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveBookingCreated increments the booking creation counter.
func ObserveBookingCreated() {
	bookingsCreated.Inc()
}

// ObserveStatusTransition records a status transition with its target status.
func ObserveStatusTransition(status string) {
	statusTransitions.WithLabelValues(status).Inc()
}

// ObserveEmail records the outcome of a notification send.
func ObserveEmail(result string) {
	emailsSent.WithLabelValues(result).Inc()
}

// ObserveLogin records a login attempt outcome.
func ObserveLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

// ObserveAccountProvisioned increments the auto-provisioned account counter.
func ObserveAccountProvisioned() {
	accountsProvisioned.Inc()
}
