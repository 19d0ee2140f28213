package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "bookings_created_total",
			Help:      "Bookings durably recorded.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "notifications_total",
			Help:      "Telegram notification attempts by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, notifications)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncBookingCreated counts one durably recorded booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncNotification counts a notification attempt outcome ("sent", "failed",
// "dead_letter", "dropped").
func IncNotification(kind, outcome string) {
	notifications.WithLabelValues(kind, outcome).Inc()
}
