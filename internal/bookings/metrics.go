package bookings

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/seatshare/internal/ledger"
	"github.com/richxcame/seatshare/internal/rides"
)

var (
	bookingOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatshare_booking_operations_total",
		Help: "Booking lifecycle operations by operation and outcome",
	}, []string{"operation", "outcome"})

	bookingConflictRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatshare_booking_conflict_retries_total",
		Help: "Optimistic-concurrency retries by operation",
	}, []string{"operation"})

	seatsReservedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seatshare_seats_reserved_total",
		Help: "Seats taken by new bookings and seat increases",
	})

	seatsReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seatshare_seats_released_total",
		Help: "Seats returned by cancellations and seat decreases",
	})
)

// outcome labels an operation result for metrics
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrInsufficientSeats):
		return "insufficient_seats"
	case errors.Is(err, ledger.ErrRideNotActive), errors.Is(err, ErrRideDeparted):
		return "ride_not_active"
	case errors.Is(err, ledger.ErrInvalidSeatCount):
		return "invalid_seat_count"
	case errors.Is(err, ErrNotModifiable), errors.Is(err, rides.ErrNotModifiable):
		return "not_modifiable"
	case errors.Is(err, ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, rides.ErrRideNotFound), errors.Is(err, ledger.ErrRideNotFound):
		return "not_found"
	case errors.Is(err, ErrNotOwner):
		return "forbidden"
	}
	return "error"
}

func recordOperation(operation string, err error) {
	bookingOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

func recordSeatDelta(delta int) {
	switch {
	case delta > 0:
		seatsReservedTotal.Add(float64(delta))
	case delta < 0:
		seatsReleasedTotal.Add(float64(-delta))
	}
}
