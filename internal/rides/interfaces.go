package rides

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryInterface defines the ride catalog's data access
type RepositoryInterface interface {
	CreateRide(ctx context.Context, ride *Ride) error
	GetRide(ctx context.Context, id uuid.UUID) (*Ride, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price float64) (*Ride, error)
	ListActive(ctx context.Context, q SearchQuery) ([]*Listing, int64, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*Ride, int64, error)
}

// CacheInvalidator drops cached driver aggregates
type CacheInvalidator interface {
	InvalidateDriver(ctx context.Context, driverID uuid.UUID)
}

// SearchQuery is a resolved catalog search: filters plus the clock and zone they are evaluated in
type SearchQuery struct {
	Filters  SearchFilters
	Now      time.Time
	Location *time.Location
	Limit    int
	Offset   int
}
