package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered once via promauto at package init.
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "community_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "community_bookings_created_total",
			Help: "Total bookings successfully created",
		},
	)

	BookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "community_bookings_rejected_total",
			Help: "Total booking attempts rejected",
		},
		[]string{"reason"},
	)

	BookingCreateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "community_booking_create_seconds",
			Help:    "Duration of booking creation",
			Buckets: prometheus.DefBuckets,
		},
	)

	EventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "community_event_publish_failures_total",
			Help: "Total failed event publishes",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "community_rate_limit_exceeded_total",
			Help: "Total requests rejected by the rate limiter",
		},
	)
)
