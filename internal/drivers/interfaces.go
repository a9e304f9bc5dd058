package drivers

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for driver profile storage
type RepositoryInterface interface {
	Create(ctx context.Context, d *Driver) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Driver, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Driver, error)
	Update(ctx context.Context, d *Driver) error
	List(ctx context.Context, status StatusFilter, limit, offset int) ([]*Driver, int64, error)
	SetVerified(ctx context.Context, id uuid.UUID) error
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
	DeleteUnverified(ctx context.Context, id uuid.UUID) error
}
