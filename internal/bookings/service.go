package bookings

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/internal/ledger"
	"github.com/richxcame/seatshare/internal/rides"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/database"
	"github.com/richxcame/seatshare/pkg/logger"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/richxcame/seatshare/pkg/resilience"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ServiceConfig holds booking rules
type ServiceConfig struct {
	// EditCutoff closes seat edits this long before departure; 0 allows edits until departure
	EditCutoff      time.Duration
	ConflictRetries int
}

// Service runs the booking lifecycle: every seat change goes through the ledger
// inside the same transaction as the booking row it belongs to.
type Service struct {
	repo   RepositoryInterface
	cache  CacheInvalidator
	config ServiceConfig
	tracer trace.Tracer
	now    func() time.Time
}

// NewService creates a new bookings service. cache may be nil.
func NewService(repo RepositoryInterface, cache CacheInvalidator, config ServiceConfig) *Service {
	if config.ConflictRetries < 1 {
		config.ConflictRetries = 3
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		config: config,
		tracer: otel.Tracer("seatshare/bookings"),
		now:    time.Now,
	}
}

// CreateBooking reserves seats on an active ride for a passenger. The ride row
// stays locked from the price read through the reservation.
func (s *Service) CreateBooking(ctx context.Context, p models.Principal, rideID uuid.UUID, seats int) (*Booking, error) {
	if err := checkActor(p); err != nil {
		return nil, err
	}
	if !p.IsPassenger() {
		return nil, common.NewForbiddenError("only passengers can book seats")
	}
	if seats < 1 {
		return nil, mapError(ledger.ErrInvalidSeatCount)
	}

	ctx = context.WithoutCancel(ctx)
	ctx, span := s.tracer.Start(ctx, "bookings.CreateBooking", trace.WithAttributes(
		attribute.String("ride.id", rideID.String()),
		attribute.Int("seats", seats),
	))

	var (
		booking  *Booking
		driverID uuid.UUID
	)
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		ride, err := tx.GetRide(ctx, rideID)
		if err != nil {
			return err
		}
		driverID = ride.DriverID
		b, err := NewBooking(p.UserID, ride, seats, s.now())
		if err != nil {
			return err
		}
		if err := tx.Reserve(ctx, rideID, seats); err != nil {
			return err
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	endSpan(span, err)
	recordOperation("create", err)
	if err != nil {
		return nil, mapError(err)
	}
	recordSeatDelta(seats)
	s.invalidate(ctx, driverID)

	logger.WithContext(ctx).Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("ride_id", rideID.String()),
		zap.String("passenger_id", p.UserID.String()),
		zap.Int("seats", seats),
	)
	return booking, nil
}

// EditBooking changes the seat count of a confirmed booking before departure.
// Asking for the current count returns the booking unchanged.
func (s *Service) EditBooking(ctx context.Context, p models.Principal, bookingID uuid.UUID, newSeats int) (*Booking, error) {
	if err := checkActor(p); err != nil {
		return nil, err
	}
	if newSeats < 1 {
		return nil, mapError(ledger.ErrInvalidSeatCount)
	}

	ctx = context.WithoutCancel(ctx)
	ctx, span := s.tracer.Start(ctx, "bookings.EditBooking", trace.WithAttributes(
		attribute.String("booking.id", bookingID.String()),
		attribute.Int("seats", newSeats),
	))

	var (
		booking  *Booking
		delta    int
		driverID uuid.UUID
	)
	err := s.withConflictRetry(ctx, "edit", func(tx TxStore) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.PassengerID != p.UserID {
			return ErrNotOwner
		}
		if b.Cancelled() {
			return ErrNotModifiable
		}

		ride, err := tx.GetRide(ctx, b.RideID)
		if err != nil {
			return err
		}
		if ride.Status != rides.StatusActive {
			return ErrNotModifiable
		}
		if !s.now().Before(ride.DepartureTime.Add(-s.config.EditCutoff)) {
			return ErrNotModifiable
		}
		driverID = ride.DriverID

		delta = newSeats - b.SeatsBooked
		if delta == 0 {
			booking = b
			return nil
		}

		if err := tx.Adjust(ctx, b.RideID, delta); err != nil {
			return err
		}
		expected := b.Version
		b.SeatsBooked = newSeats
		b.TotalPrice = Fare(newSeats, ride.Price)
		if err := tx.UpdateBookingSeats(ctx, b, expected); err != nil {
			return err
		}
		booking = b
		return nil
	})
	endSpan(span, err)
	recordOperation("edit", err)
	if err != nil {
		return nil, mapError(err)
	}
	if delta != 0 {
		recordSeatDelta(delta)
		s.invalidate(ctx, driverID)
		logger.WithContext(ctx).Info("booking seats changed",
			zap.String("booking_id", bookingID.String()),
			zap.Int("seats", newSeats),
			zap.Int("delta", delta),
		)
	}
	return booking, nil
}

// CancelBooking cancels a booking and returns its seats. Cancelling a
// cancelled booking succeeds without touching the ledger.
func (s *Service) CancelBooking(ctx context.Context, p models.Principal, bookingID uuid.UUID) (*Booking, error) {
	if err := checkActor(p); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	ctx, span := s.tracer.Start(ctx, "bookings.CancelBooking", trace.WithAttributes(
		attribute.String("booking.id", bookingID.String()),
	))

	var (
		booking  *Booking
		released int
		driverID uuid.UUID
	)
	err := s.withConflictRetry(ctx, "cancel", func(tx TxStore) error {
		released = 0
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if !p.CanActOn(b.PassengerID) {
			return ErrNotOwner
		}
		if b.Cancelled() {
			booking = b
			return nil
		}

		ride, err := tx.GetRide(ctx, b.RideID)
		if err != nil {
			return err
		}
		if ride.Status != rides.StatusActive {
			return ErrNotModifiable
		}
		driverID = ride.DriverID

		if err := tx.CancelBooking(ctx, b, b.Version); err != nil {
			return err
		}
		if err := tx.Release(ctx, b.RideID, b.SeatsBooked); err != nil {
			return err
		}
		released = b.SeatsBooked
		booking = b
		return nil
	})
	endSpan(span, err)
	recordOperation("cancel", err)
	if err != nil {
		return nil, mapError(err)
	}
	if released > 0 {
		recordSeatDelta(-released)
		s.invalidate(ctx, driverID)
		logger.WithContext(ctx).Info("booking cancelled",
			zap.String("booking_id", bookingID.String()),
			zap.String("ride_id", booking.RideID.String()),
			zap.Int("seats_released", released),
		)
	}
	return booking, nil
}

// CancelRide cancels an active ride and every confirmed booking on it.
// Seats are not returned; a cancelled ride is never bookable again.
func (s *Service) CancelRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*CancelRideResult, error) {
	if err := checkActor(p); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	ctx, span := s.tracer.Start(ctx, "bookings.CancelRide", trace.WithAttributes(
		attribute.String("ride.id", rideID.String()),
	))

	var result *CancelRideResult
	err := s.withConflictRetry(ctx, "cancel_ride", func(tx TxStore) error {
		ride, err := tx.GetRide(ctx, rideID)
		if err != nil {
			return err
		}
		if !p.CanActOn(ride.DriverID) {
			return ErrNotOwner
		}
		switch ride.Status {
		case rides.StatusCancelled:
			result = &CancelRideResult{Ride: ride}
			return nil
		case rides.StatusCompleted:
			return rides.ErrNotModifiable
		}

		cancelled, err := tx.TransitionRide(ctx, rideID, rides.StatusCancelled)
		if err != nil {
			return err
		}
		n, err := tx.CancelRideBookings(ctx, rideID)
		if err != nil {
			return err
		}
		result = &CancelRideResult{Ride: cancelled, CancelledBookings: n}
		return nil
	})
	endSpan(span, err)
	recordOperation("cancel_ride", err)
	if err != nil {
		return nil, mapError(err)
	}

	s.invalidate(ctx, result.Ride.DriverID)
	logger.WithContext(ctx).Info("ride cancelled",
		zap.String("ride_id", rideID.String()),
		zap.String("actor_id", p.UserID.String()),
		zap.Int("bookings_cancelled", result.CancelledBookings),
	)
	return result, nil
}

// CompleteRide marks an active ride completed and counts it for the driver
func (s *Service) CompleteRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*rides.Ride, error) {
	if err := checkActor(p); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	ctx, span := s.tracer.Start(ctx, "bookings.CompleteRide", trace.WithAttributes(
		attribute.String("ride.id", rideID.String()),
	))

	var (
		completed *rides.Ride
		changed   bool
	)
	err := s.withConflictRetry(ctx, "complete_ride", func(tx TxStore) error {
		changed = false
		ride, err := tx.GetRide(ctx, rideID)
		if err != nil {
			return err
		}
		if !p.CanActOn(ride.DriverID) {
			return ErrNotOwner
		}
		switch ride.Status {
		case rides.StatusCompleted:
			completed = ride
			return nil
		case rides.StatusCancelled:
			return rides.ErrNotModifiable
		}

		ride, err = tx.TransitionRide(ctx, rideID, rides.StatusCompleted)
		if err != nil {
			return err
		}
		if err := tx.IncrementCompletedRides(ctx, ride.DriverID); err != nil {
			return err
		}
		completed, changed = ride, true
		return nil
	})
	endSpan(span, err)
	recordOperation("complete_ride", err)
	if err != nil {
		return nil, mapError(err)
	}

	if changed {
		s.invalidate(ctx, completed.DriverID)
		logger.WithContext(ctx).Info("ride completed",
			zap.String("ride_id", rideID.String()),
			zap.String("driver_id", completed.DriverID.String()),
		)
	}
	return completed, nil
}

// ========================================
// READS
// ========================================

// GetBooking returns a booking to its passenger, the ride's driver or an admin
func (s *Service) GetBooking(ctx context.Context, p models.Principal, bookingID uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, mapError(err)
	}
	if p.CanActOn(b.PassengerID) {
		return b, nil
	}

	ride, err := s.repo.GetRide(ctx, b.RideID)
	if err != nil {
		return nil, mapError(err)
	}
	if !p.CanActOn(ride.DriverID) {
		return nil, mapError(ErrNotOwner)
	}
	return b, nil
}

// ListPassengerBookings lists the caller's bookings
func (s *Service) ListPassengerBookings(ctx context.Context, p models.Principal, limit, offset int) ([]*BookingView, int64, error) {
	views, total, err := s.repo.ListPassengerBookings(ctx, p.UserID, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list bookings", err)
	}
	if views == nil {
		views = []*BookingView{}
	}
	return views, total, nil
}

// ListRideBookings lists a ride's confirmed bookings for its driver or an admin
func (s *Service) ListRideBookings(ctx context.Context, p models.Principal, rideID uuid.UUID) ([]*RideBooking, error) {
	ride, err := s.repo.GetRide(ctx, rideID)
	if err != nil {
		return nil, mapError(err)
	}
	if !p.CanActOn(ride.DriverID) {
		return nil, mapError(ErrNotOwner)
	}

	list, err := s.repo.ListRideBookings(ctx, rideID)
	if err != nil {
		return nil, common.NewInternalError("failed to list ride bookings", err)
	}
	if list == nil {
		list = []*RideBooking{}
	}
	return list, nil
}

// ========================================
// HELPERS
// ========================================

// withConflictRetry runs fn in a fresh transaction per attempt, retrying version
// conflicts and transient database errors
func (s *Service) withConflictRetry(ctx context.Context, operation string, fn func(tx TxStore) error) error {
	cfg := resilience.ConflictRetryConfig(s.config.ConflictRetries)
	cfg.RetryableChecker = func(err error) bool {
		return errors.Is(err, ErrConcurrencyConflict) || database.IsRetryable(err)
	}
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		bookingConflictRetriesTotal.WithLabelValues(operation).Inc()
		logger.WithContext(ctx).Debug("retrying booking operation",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
	}

	_, err := resilience.Retry(ctx, cfg, func(ctx context.Context) (interface{}, error) {
		return nil, s.repo.InTx(ctx, fn)
	})
	return err
}

func (s *Service) invalidate(ctx context.Context, driverID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateDriver(ctx, driverID)
	}
}

func checkActor(p models.Principal) error {
	if p.Banned {
		return common.NewForbiddenError("account is banned").WithKey("account.error.banned")
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
	}
	span.End()
}

func mapError(err error) error {
	if _, ok := common.AsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ledger.ErrInsufficientSeats):
		return common.NewConflictErrorWrap("not enough seats left on this ride, choose fewer seats or another ride", err).
			WithKey("booking.error.insufficient_seats")
	case errors.Is(err, ledger.ErrRideNotActive), errors.Is(err, ErrRideDeparted):
		return common.NewConflictErrorWrap("ride is no longer open for booking", err).
			WithKey("booking.error.ride_not_active")
	case errors.Is(err, ledger.ErrInvalidSeatCount):
		return common.NewBadRequestError("seat count must be at least 1", err).
			WithKey("booking.error.invalid_seat_count")
	case errors.Is(err, ErrNotModifiable):
		return common.NewConflictErrorWrap("booking can no longer be changed", err).
			WithKey("booking.error.not_modifiable")
	case errors.Is(err, rides.ErrNotModifiable):
		return common.NewConflictErrorWrap("ride can no longer be changed", err).
			WithKey("ride.error.not_modifiable")
	case errors.Is(err, ErrConcurrencyConflict):
		return common.NewConflictErrorWrap("booking was changed by another request, please retry", err).
			WithKey("booking.error.concurrency_conflict")
	case errors.Is(err, ErrBookingNotFound):
		return common.NewNotFoundError("booking not found", err).WithKey("booking.error.not_found")
	case errors.Is(err, rides.ErrRideNotFound), errors.Is(err, ledger.ErrRideNotFound):
		return common.NewNotFoundError("ride not found", err).WithKey("ride.error.not_found")
	case errors.Is(err, ErrNotOwner):
		return common.NewAppError(http.StatusForbidden, "you are not allowed to change this booking or ride", err)
	}
	return common.NewInternalError("booking operation failed", err)
}
