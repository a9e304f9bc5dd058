package earnings

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/internal/rides"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/i18n"
	"github.com/richxcame/seatshare/pkg/models"
)

// Service serves read-only driver and passenger aggregates
type Service struct {
	repo  RepositoryInterface
	cache *Cache
}

// NewService creates a new earnings service. cache may be nil.
func NewService(repo RepositoryInterface, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// cached returns the value under key, computing and storing it on a miss
func cached[T any](ctx context.Context, c *Cache, key string, compute func() (T, error)) (T, error) {
	var value T
	if c.get(ctx, key, &value) {
		return value, nil
	}
	value, err := compute()
	if err != nil {
		return value, err
	}
	c.set(ctx, key, value)
	return value, nil
}

// DriverEarnings returns the driver's total from completed rides
func (s *Service) DriverEarnings(ctx context.Context, driverID uuid.UUID) (float64, error) {
	total, err := cached(ctx, s.cache, driverKey(driverID, "earnings"), func() (float64, error) {
		v, err := s.repo.DriverEarnings(ctx, driverID)
		return rides.RoundMoney(v), err
	})
	if err != nil {
		return 0, common.NewInternalError("failed to compute earnings", err)
	}
	return total, nil
}

// DriverRating returns the driver's average passenger rating, one decimal
func (s *Service) DriverRating(ctx context.Context, driverID uuid.UUID) (*RatingSummary, error) {
	summary, err := cached(ctx, s.cache, driverKey(driverID, "rating"), func() (RatingSummary, error) {
		r, err := s.repo.DriverRating(ctx, driverID)
		return roundRating(r), err
	})
	if err != nil {
		return nil, common.NewInternalError("failed to compute rating", err)
	}
	return &summary, nil
}

// PassengerRating returns the passenger's average driver rating, one decimal
func (s *Service) PassengerRating(ctx context.Context, passengerID uuid.UUID) (*RatingSummary, error) {
	summary, err := cached(ctx, s.cache, passengerKey(passengerID, "rating"), func() (RatingSummary, error) {
		r, err := s.repo.PassengerRating(ctx, passengerID)
		return roundRating(r), err
	})
	if err != nil {
		return nil, common.NewInternalError("failed to compute rating", err)
	}
	return &summary, nil
}

// RideEarnings returns the per-ride breakdown for the driver's ride cards
func (s *Service) RideEarnings(ctx context.Context, driverID uuid.UUID) ([]RideEarning, error) {
	list, err := cached(ctx, s.cache, driverKey(driverID, "rides"), func() ([]RideEarning, error) {
		list, err := s.repo.RideEarnings(ctx, driverID)
		for i := range list {
			list[i].Earnings = rides.RoundMoney(list[i].Earnings)
		}
		return list, err
	})
	if err != nil {
		return nil, common.NewInternalError("failed to compute ride earnings", err)
	}
	if list == nil {
		list = []RideEarning{}
	}
	return list, nil
}

// DriverSummary assembles the driver dashboard numbers
func (s *Service) DriverSummary(ctx context.Context, driverID uuid.UUID) (*Summary, error) {
	total, err := s.DriverEarnings(ctx, driverID)
	if err != nil {
		return nil, err
	}
	rating, err := s.DriverRating(ctx, driverID)
	if err != nil {
		return nil, err
	}
	counts, err := cached(ctx, s.cache, driverKey(driverID, "counts"), func() (RideCounts, error) {
		return s.repo.RideCounts(ctx, driverID)
	})
	if err != nil {
		return nil, common.NewInternalError("failed to count rides", err)
	}

	return &Summary{
		DriverID:      driverID,
		TotalEarnings: total,
		Currency:      i18n.DefaultCurrency,
		Rating:        *rating,
		Rides:         counts,
	}, nil
}

// MySummary is DriverSummary for the calling driver
func (s *Service) MySummary(ctx context.Context, p models.Principal) (*Summary, error) {
	if !p.IsDriver() {
		return nil, common.NewForbiddenError("only drivers have earnings")
	}
	return s.DriverSummary(ctx, p.UserID)
}

// MyRideEarnings is RideEarnings for the calling driver
func (s *Service) MyRideEarnings(ctx context.Context, p models.Principal) ([]RideEarning, error) {
	if !p.IsDriver() {
		return nil, common.NewForbiddenError("only drivers have earnings")
	}
	return s.RideEarnings(ctx, p.UserID)
}

// InvalidateDriver drops cached aggregates after a ride or review changes them
func (s *Service) InvalidateDriver(ctx context.Context, driverID uuid.UUID) {
	s.cache.InvalidateDriver(ctx, driverID)
}

// InvalidatePassenger drops the passenger's cached rating
func (s *Service) InvalidatePassenger(ctx context.Context, passengerID uuid.UUID) {
	s.cache.InvalidatePassenger(ctx, passengerID)
}

func roundRating(r RatingSummary) RatingSummary {
	if r.Count == 0 {
		r.Average = nil
		return r
	}
	if r.Average != nil {
		avg := math.Round(*r.Average*10) / 10
		r.Average = &avg
	}
	return r
}
