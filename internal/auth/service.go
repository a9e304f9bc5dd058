package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/config"
	"github.com/richxcame/seatshare/pkg/jwtkeys"
	"github.com/richxcame/seatshare/pkg/logger"
	"github.com/richxcame/seatshare/pkg/middleware"
	"github.com/richxcame/seatshare/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service handles accounts, sessions and principal resolution
type Service struct {
	repo       RepositoryInterface
	keys       jwtkeys.KeyProvider
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService creates a new auth service
func NewService(repo RepositoryInterface, keys jwtkeys.KeyProvider, tokenTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		keys:       keys,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates a passenger or driver account
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if req.Role != models.RolePassenger && req.Role != models.RoleDriver {
		return nil, common.NewBadRequestError("role must be passenger or driver", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, common.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Phone:        strings.TrimSpace(req.Phone),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         req.Role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrPhoneTaken) {
			return nil, common.NewConflictErrorWrap("phone number already registered", err)
		}
		return nil, common.NewInternalError("failed to create user", err)
	}

	logger.WithContext(ctx).Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Login verifies credentials and issues a token. Banned accounts cannot log in.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.repo.GetUserByPhone(ctx, strings.TrimSpace(req.Phone))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, common.NewUnauthorizedError("invalid credentials")
		}
		return nil, common.NewInternalError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.NewUnauthorizedError("invalid credentials")
	}

	if user.IsBanned {
		return nil, common.NewForbiddenError("account is banned").WithKey("account.error.banned")
	}

	token, err := middleware.GenerateToken(s.keys, user, s.tokenTTL)
	if err != nil {
		return nil, common.NewInternalError("failed to issue token", err)
	}

	return &models.LoginResponse{User: user, Token: token}, nil
}

// GetProfile returns the caller's account
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, common.NewNotFoundError("user not found", err)
		}
		return nil, common.NewInternalError("failed to load user", err)
	}
	return user, nil
}

// ResolvePrincipal loads the current role and standing of an authenticated user
func (s *Service) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (*models.Principal, error) {
	p, err := s.repo.GetPrincipal(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, common.NewUnauthorizedError("account no longer exists")
		}
		return nil, err
	}
	return p, nil
}

// EnsureAdmin bootstraps the administrator account from configuration.
// Without configured credentials no admin is created.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Phone == "" || cfg.Password == "" {
		logger.Warn("admin credentials not configured, skipping admin bootstrap")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), s.bcryptCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:           uuid.New(),
		Phone:        cfg.Phone,
		Name:         cfg.Name,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.repo.UpsertAdmin(ctx, admin); err != nil {
		return err
	}

	logger.Info("admin account ready", zap.String("user_id", admin.ID.String()))
	return nil
}

// ========================================
// ADMIN
// ========================================

// ListUsers lists accounts for administrators
func (s *Service) ListUsers(ctx context.Context, p models.Principal, filter UserFilter, limit, offset int) ([]*models.User, int64, error) {
	if !p.IsAdmin() {
		return nil, 0, common.NewForbiddenError("admin access required")
	}

	users, total, err := s.repo.ListUsers(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list users", err)
	}
	return users, total, nil
}

// SetBanned bans or unbans an account
func (s *Service) SetBanned(ctx context.Context, p models.Principal, userID uuid.UUID, banned bool) error {
	if !p.IsAdmin() {
		return common.NewForbiddenError("admin access required")
	}

	if err := s.repo.SetBanned(ctx, userID, banned); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return common.NewNotFoundError("user not found", err)
		case errors.Is(err, ErrCannotBanAdmin):
			return common.NewBadRequestError("administrators cannot be banned", err)
		}
		return common.NewInternalError("failed to update user", err)
	}

	logger.WithContext(ctx).Info("user ban state changed",
		zap.String("user_id", userID.String()),
		zap.Bool("banned", banned),
		zap.String("admin_id", p.UserID.String()),
	)
	return nil
}
