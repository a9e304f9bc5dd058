package earnings

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface computes aggregates straight from the booking tables
type RepositoryInterface interface {
	DriverEarnings(ctx context.Context, driverID uuid.UUID) (float64, error)
	DriverRating(ctx context.Context, driverID uuid.UUID) (RatingSummary, error)
	PassengerRating(ctx context.Context, passengerID uuid.UUID) (RatingSummary, error)
	RideEarnings(ctx context.Context, driverID uuid.UUID) ([]RideEarning, error)
	RideCounts(ctx context.Context, driverID uuid.UUID) (RideCounts, error)
}
