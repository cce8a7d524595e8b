package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for request traffic and the parcel lifecycle.
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ParcelsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parcels_created_total",
			Help: "Total number of parcels created",
		},
	)

	PaymentsRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Total number of payment records written",
		},
	)

	PaymentConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_conflicts_total",
			Help: "Payments rejected because the parcel was missing or already paid",
		},
	)

	PaymentIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_intents_total",
			Help: "Payment intents requested from the processor, by result",
		},
		[]string{"result"},
	)

	TrackingEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_events_appended_total",
			Help: "Tracking events appended, by ledger collection",
		},
		[]string{"ledger"},
	)

	TrackingCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_cache_hits_total",
			Help: "Tracking history reads served from the Redis cache",
		},
	)
)

var registerOnce sync.Once

// Register registers all metrics with the default registerer. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			ParcelsCreatedTotal,
			PaymentsRecordedTotal,
			PaymentConflictsTotal,
			PaymentIntentsTotal,
			TrackingEventsTotal,
			TrackingCacheHitsTotal,
		)
	})
}
