package rides

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/logger"
	"github.com/richxcame/seatshare/pkg/models"
	"go.uber.org/zap"
)

// Service handles the ride catalog
type Service struct {
	repo  RepositoryInterface
	cache CacheInvalidator
	loc   *time.Location
	now   func() time.Time
}

// NewService creates a new rides service. cache may be nil; loc is the zone
// time-of-day filters are evaluated in.
func NewService(repo RepositoryInterface, cache CacheInvalidator, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, cache: cache, loc: loc, now: time.Now}
}

// CreateRide publishes a new ride for a verified driver
func (s *Service) CreateRide(ctx context.Context, p models.Principal, req *CreateRideRequest) (*Ride, error) {
	if p.Banned {
		return nil, common.NewForbiddenError("account is banned").WithKey("account.error.banned")
	}
	if !p.IsDriver() {
		return nil, common.NewForbiddenError("only drivers can publish rides")
	}
	if !p.DriverVerified {
		return nil, common.NewAppError(http.StatusForbidden, "driver profile is not verified", ErrDriverNotVerified).WithKey("driver.error.not_verified")
	}

	var price float64
	if req.Price != nil {
		price = *req.Price
	}
	ride, err := NewRide(p.UserID, req.FromLocation, req.ToLocation, price, req.TotalSeats, req.DepartureTime, s.now())
	if err != nil {
		return nil, common.NewBadRequestError(err.Error(), err)
	}

	if err := s.repo.CreateRide(ctx, ride); err != nil {
		return nil, common.NewInternalError("failed to create ride", err)
	}
	if s.cache != nil {
		s.cache.InvalidateDriver(ctx, ride.DriverID)
	}

	logger.WithContext(ctx).Info("ride created",
		zap.String("ride_id", ride.ID.String()),
		zap.String("driver_id", p.UserID.String()),
		zap.Int("seats", ride.TotalSeats),
	)
	return ride, nil
}

// GetRide returns a ride by ID
func (s *Service) GetRide(ctx context.Context, id uuid.UUID) (*Ride, error) {
	ride, err := s.repo.GetRide(ctx, id)
	if err != nil {
		return nil, mapRideError(err, "failed to get ride")
	}
	return ride, nil
}

// UpdateRidePrice changes the per-seat price of an active ride.
// Existing bookings keep the total they were created with.
func (s *Service) UpdateRidePrice(ctx context.Context, p models.Principal, id uuid.UUID, price float64) (*Ride, error) {
	if p.Banned {
		return nil, common.NewForbiddenError("account is banned").WithKey("account.error.banned")
	}
	if price < 0 {
		return nil, common.NewBadRequestError(ErrInvalidPrice.Error(), ErrInvalidPrice)
	}

	ride, err := s.repo.GetRide(ctx, id)
	if err != nil {
		return nil, mapRideError(err, "failed to get ride")
	}
	if !p.CanActOn(ride.DriverID) {
		return nil, common.NewForbiddenError("you don't own this ride")
	}
	if ride.Status != StatusActive {
		return nil, notModifiable()
	}

	updated, err := s.repo.UpdatePrice(ctx, id, RoundMoney(price))
	if err != nil {
		return nil, mapRideError(err, "failed to update ride price")
	}
	return updated, nil
}

// ListActiveRides searches bookable rides
func (s *Service) ListActiveRides(ctx context.Context, filters SearchFilters, limit, offset int) ([]*Listing, int64, error) {
	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MinPrice > *filters.MaxPrice {
		return nil, 0, common.NewBadRequestError("min_price must not exceed max_price", nil)
	}

	listings, total, err := s.repo.ListActive(ctx, SearchQuery{
		Filters:  filters,
		Now:      s.now(),
		Location: s.loc,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, 0, common.NewInternalError("failed to search rides", err)
	}
	if listings == nil {
		listings = []*Listing{}
	}
	return listings, total, nil
}

// ListDriverRides returns the caller's own rides
func (s *Service) ListDriverRides(ctx context.Context, p models.Principal, limit, offset int) ([]*Ride, int64, error) {
	if !p.IsDriver() && !p.IsAdmin() {
		return nil, 0, common.NewForbiddenError("only drivers have rides")
	}

	rides, total, err := s.repo.ListByDriver(ctx, p.UserID, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list rides", err)
	}
	if rides == nil {
		rides = []*Ride{}
	}
	return rides, total, nil
}

func notModifiable() *common.AppError {
	return common.NewConflictErrorWrap("ride is no longer active", ErrNotModifiable).WithKey("ride.error.not_modifiable")
}

func mapRideError(err error, fallback string) error {
	switch {
	case errors.Is(err, ErrRideNotFound):
		return common.NewNotFoundError("ride not found", err).WithKey("ride.error.not_found")
	case errors.Is(err, ErrNotModifiable):
		return notModifiable()
	}
	return common.NewInternalError(fallback, err)
}
