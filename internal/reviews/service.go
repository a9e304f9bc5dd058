package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/logger"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/richxcame/seatshare/pkg/security"
	"go.uber.org/zap"
)

// Service handles reviews between passengers and drivers
type Service struct {
	repo  RepositoryInterface
	cache RatingCache
}

// NewService creates a new reviews service. cache may be nil.
func NewService(repo RepositoryInterface, cache RatingCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ReviewDriver lets the passenger of a booking rate the ride's driver
func (s *Service) ReviewDriver(ctx context.Context, p models.Principal, bookingID uuid.UUID, req *CreateReviewRequest) (*Review, error) {
	return s.create(ctx, p, bookingID, PassengerToDriver, req)
}

// ReviewPassenger lets the driver of a ride rate a passenger who booked it
func (s *Service) ReviewPassenger(ctx context.Context, p models.Principal, bookingID uuid.UUID, req *CreateReviewRequest) (*Review, error) {
	return s.create(ctx, p, bookingID, DriverToPassenger, req)
}

func (s *Service) create(ctx context.Context, p models.Principal, bookingID uuid.UUID, dir Direction, req *CreateReviewRequest) (*Review, error) {
	if p.Banned {
		return nil, common.NewForbiddenError("account is banned").WithKey("account.error.banned")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, mapError(ErrInvalidRating)
	}

	parts, err := s.repo.GetParticipants(ctx, bookingID)
	if err != nil {
		return nil, mapError(err)
	}

	review, err := NewReview(parts, dir, p.UserID, req.Rating, security.CleanText(req.Text, 1000), time.Now())
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, mapError(err)
	}

	if s.cache != nil {
		if dir == PassengerToDriver {
			s.cache.InvalidateDriver(ctx, review.SubjectID)
		} else {
			s.cache.InvalidatePassenger(ctx, review.SubjectID)
		}
	}

	logger.WithContext(ctx).Info("review created",
		zap.String("review_id", review.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.String("direction", string(dir)),
		zap.Int("rating", review.Rating),
	)
	return review, nil
}

// ListDriverReviews returns the reviews passengers left for a driver
func (s *Service) ListDriverReviews(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*ReceivedReview, int64, error) {
	list, total, err := s.repo.ListReceived(ctx, driverID, PassengerToDriver, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list reviews", err)
	}
	return list, total, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidRating):
		return common.NewBadRequestError("rating must be between 1 and 5", err)
	case errors.Is(err, ErrDuplicateReview):
		return common.NewConflictErrorWrap("you have already reviewed this booking", err).WithKey("review.error.duplicate")
	case errors.Is(err, ErrBookingNotFound):
		return common.NewNotFoundError("booking not found", err).WithKey("booking.error.not_found")
	case errors.Is(err, ErrNotParticipant):
		return common.NewForbiddenError("you can only review bookings you took part in")
	case errors.Is(err, ErrRideNotCompleted):
		return common.NewConflictErrorWrap("reviews open once the ride is completed", err)
	case errors.Is(err, ErrBookingCancelled):
		return common.NewConflictErrorWrap("cancelled bookings cannot be reviewed", err)
	}
	return common.NewInternalError("failed to save review", err)
}
