package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "izposoja_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "izposoja_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	rentalsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "izposoja_rentals_opened_total",
		Help: "Rentals opened.",
	})

	// late is "true" when the item came back after its due date.
	rentalsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "izposoja_rentals_closed_total",
			Help: "Rentals closed by return.",
		},
		[]string{"late"},
	)

	historyPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "izposoja_history_purged_total",
		Help: "Closed rental records removed by purges.",
	})
)
