package bookings

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/internal/rides"
)

// TxStore is the set of statements a lifecycle operation runs inside one transaction
type TxStore interface {
	// GetRide reads the ride and locks it until the transaction ends
	GetRide(ctx context.Context, rideID uuid.UUID) (*rides.Ride, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	InsertBooking(ctx context.Context, b *Booking) error
	// UpdateBookingSeats writes b's seats and price if the stored version is still
	// expectedVersion, then bumps b.Version
	UpdateBookingSeats(ctx context.Context, b *Booking, expectedVersion int) error
	// CancelBooking flips b to cancelled under the same version check
	CancelBooking(ctx context.Context, b *Booking, expectedVersion int) error
	// TransitionRide moves an active ride to a terminal status
	TransitionRide(ctx context.Context, rideID uuid.UUID, to rides.Status) (*rides.Ride, error)
	CancelRideBookings(ctx context.Context, rideID uuid.UUID) (int, error)
	IncrementCompletedRides(ctx context.Context, driverID uuid.UUID) error

	Reserve(ctx context.Context, rideID uuid.UUID, count int) error
	Release(ctx context.Context, rideID uuid.UUID, count int) error
	Adjust(ctx context.Context, rideID uuid.UUID, delta int) error
}

// RepositoryInterface defines the interface for booking storage
type RepositoryInterface interface {
	// InTx runs fn in a transaction, committing only if fn returns nil
	InTx(ctx context.Context, fn func(tx TxStore) error) error
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	GetRide(ctx context.Context, rideID uuid.UUID) (*rides.Ride, error)
	ListPassengerBookings(ctx context.Context, passengerID uuid.UUID, limit, offset int) ([]*BookingView, int64, error)
	ListRideBookings(ctx context.Context, rideID uuid.UUID) ([]*RideBooking, error)
}

// CacheInvalidator drops cached driver aggregates
type CacheInvalidator interface {
	InvalidateDriver(ctx context.Context, driverID uuid.UUID)
}
