package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/middleware"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/richxcame/seatshare/pkg/pagination"
)

// ServiceInterface is the part of Service the handler needs
type ServiceInterface interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, p models.Principal, filter UserFilter, limit, offset int) ([]*models.User, int64, error)
	SetBanned(ctx context.Context, p models.Principal, userID uuid.UUID, banned bool) error
}

// Handler handles HTTP requests for authentication
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new auth handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, err, "registration failed")
		return
	}

	common.CreatedResponse(c, user)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	response, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, err, "login failed")
		return
	}

	common.SuccessResponse(c, response)
}

// GetProfile returns the caller's account
// GET /api/v1/me
func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.HandleError(c, err, "failed to get profile")
		return
	}

	common.SuccessResponse(c, user)
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ListUsers lists accounts
// GET /api/v1/admin/users?role=passenger&banned=true&q=&limit=20&offset=0
func (h *Handler) ListUsers(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var filter UserFilter
	if !middleware.ValidateAndBindQuery(c, &filter) {
		return
	}
	params := pagination.ParseParams(c)

	users, total, err := h.service.ListUsers(c.Request.Context(), principal, filter, params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to list users")
		return
	}

	common.SuccessResponseWithMeta(c, gin.H{"users": users}, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// BanUser bans an account
// POST /api/v1/admin/users/:id/ban
func (h *Handler) BanUser(c *gin.Context) {
	h.setBanned(c, true)
}

// UnbanUser lifts a ban
// POST /api/v1/admin/users/:id/unban
func (h *Handler) UnbanUser(c *gin.Context) {
	h.setBanned(c, false)
}

func (h *Handler) setBanned(c *gin.Context, banned bool) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.service.SetBanned(c.Request.Context(), principal, userID, banned); err != nil {
		common.HandleError(c, err, "failed to update user")
		return
	}

	common.SuccessResponse(c, gin.H{"user_id": userID, "is_banned": banned})
}

// RegisterRoutes registers auth routes
func (h *Handler) RegisterRoutes(public, authed, admin *gin.RouterGroup) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)

	authed.GET("/me", h.GetProfile)

	admin.GET("/users", h.ListUsers)
	admin.POST("/users/:id/ban", h.BanUser)
	admin.POST("/users/:id/unban", h.UnbanUser)
}
