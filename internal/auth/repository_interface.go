package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/models"
)

// RepositoryInterface defines the interface for auth repository operations
type RepositoryInterface interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpsertAdmin(ctx context.Context, user *models.User) error
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetPrincipal(ctx context.Context, id uuid.UUID) (*models.Principal, error)
	ListUsers(ctx context.Context, filter UserFilter, limit, offset int) ([]*models.User, int64, error)
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
}

// UserFilter narrows the admin user listing
type UserFilter struct {
	Role   models.Role `form:"role" json:"role" validate:"omitempty,oneof=passenger driver admin"`
	Banned *bool       `form:"banned" json:"banned"`
	Search string      `form:"q" json:"q" validate:"max=100"`
}
