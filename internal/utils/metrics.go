package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BorrowingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borrowings_total",
		Help: "Total number of borrowings created",
	})

	BorrowingsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borrowings_failed_total",
		Help: "Total number of rejected borrow attempts",
	}, []string{"reason"})

	ReturnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "returns_total",
		Help: "Total number of returned borrowings",
	})

	RenewalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "renewals_total",
		Help: "Total number of renewed borrowings",
	})

	ReservationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_total",
		Help: "Total number of reservations placed",
	})

	ReservationsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_completed_total",
		Help: "Total number of reservations completed into borrowings",
	})

	ReservationsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_expired_total",
		Help: "Total number of reservations expired by the sweep",
	})

	FinesIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fines_issued_total",
		Help: "Total number of fines created by the sweep",
	})

	FinesUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fines_updated_total",
		Help: "Total number of pending fines recomputed in place",
	})

	SweepErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_errors_total",
		Help: "Total number of per-item errors during sweeps",
	}, []string{"sweep"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
