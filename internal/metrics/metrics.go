// Package metrics exposes Prometheus instrumentation for booking operations.
package metrics

import (
	"errors"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK                = "ok"
	OutcomeNotFound          = "not_found"
	OutcomeSoldOut           = "sold_out"
	OutcomeInvalidTransition = "invalid_transition"
	OutcomeInvalidState      = "invalid_state"
	OutcomeInvalid           = "invalid"
	OutcomeError             = "error"
)

var (
	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Total booking operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	ticketsReserved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_reserved_total",
			Help: "Tickets taken out of event availability",
		},
	)

	ticketsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_released_total",
			Help: "Tickets returned to event availability by cancellations",
		},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_operation_duration_seconds",
			Help:    "Latency of booking operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Outcome maps an operation error onto its label value.
func Outcome(err error) string {
	var verr *model.ValidationError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, model.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, model.ErrSoldOut):
		return OutcomeSoldOut
	case errors.Is(err, model.ErrInvalidTransition):
		return OutcomeInvalidTransition
	case errors.Is(err, model.ErrInvalidState):
		return OutcomeInvalidState
	case errors.As(err, &verr):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// Track records one operation that started at start and finished with err.
func Track(operation string, start time.Time, err error) {
	bookingOperations.WithLabelValues(operation, Outcome(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// TicketsReserved counts tickets taken by a new booking.
func TicketsReserved(n int) {
	ticketsReserved.Add(float64(n))
}

// TicketsReleased counts tickets handed back by a cancellation.
func TicketsReleased(n int) {
	ticketsReleased.Add(float64(n))
}
