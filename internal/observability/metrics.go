package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helpdesk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	httpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_http_errors_total",
		Help: "Failed requests by error code",
	}, []string{"method", "route", "code"})

	ticketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helpdesk_tickets_created_total",
		Help: "Tickets successfully created",
	})

	ticketNumberConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helpdesk_ticket_number_conflicts_total",
		Help: "Ticket inserts retried because the generated number was already taken",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, code).Inc()
	httpRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
}

// ObserveHTTPError counts a failed request by its domain error code.
func ObserveHTTPError(method, route, code string) {
	httpErrorsTotal.WithLabelValues(method, route, code).Inc()
}

func IncTicketsCreated() {
	ticketsCreated.Inc()
}

func IncTicketNumberConflicts() {
	ticketNumberConflicts.Inc()
}
