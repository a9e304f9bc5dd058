package reviews

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for review storage
type RepositoryInterface interface {
	GetParticipants(ctx context.Context, bookingID uuid.UUID) (*Participants, error)
	Create(ctx context.Context, review *Review) error
	ListReceived(ctx context.Context, subjectID uuid.UUID, direction Direction, limit, offset int) ([]*ReceivedReview, int64, error)
}

// RatingCache drops cached rating aggregates after a new review
type RatingCache interface {
	InvalidateDriver(ctx context.Context, driverID uuid.UUID)
	InvalidatePassenger(ctx context.Context, passengerID uuid.UUID)
}
