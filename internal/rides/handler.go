package rides

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/middleware"
	"github.com/richxcame/seatshare/pkg/pagination"
)

// Handler handles HTTP requests for rides
type Handler struct {
	service *Service
}

// NewHandler creates a new rides handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SearchRides lists bookable rides
// GET /api/v1/rides?from=&to=&price=under-500&min_rating=4&time=morning&limit=20&offset=0
func (h *Handler) SearchRides(c *gin.Context) {
	var filters SearchFilters
	if !middleware.ValidateAndBindQuery(c, &filters) {
		return
	}
	params := pagination.ParseParams(c)

	listings, total, err := h.service.ListActiveRides(c.Request.Context(), filters, params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to search rides")
		return
	}

	common.SuccessResponseWithMeta(c, gin.H{"rides": listings}, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// GetRide handles getting a ride by ID
// GET /api/v1/rides/:id
func (h *Handler) GetRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid ride ID")
		return
	}

	ride, err := h.service.GetRide(c.Request.Context(), rideID)
	if err != nil {
		common.HandleError(c, err, "failed to get ride")
		return
	}

	common.SuccessResponse(c, ride)
}

// ========================================
// DRIVER ENDPOINTS
// ========================================

// CreateRide publishes a ride
// POST /api/v1/driver/rides
func (h *Handler) CreateRide(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateRideRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	ride, err := h.service.CreateRide(c.Request.Context(), principal, &req)
	if err != nil {
		common.HandleError(c, err, "failed to create ride")
		return
	}

	common.CreatedResponse(c, ride)
}

// ListMyRides returns the driver's rides
// GET /api/v1/driver/rides?limit=20&offset=0
func (h *Handler) ListMyRides(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	params := pagination.ParseParams(c)

	rides, total, err := h.service.ListDriverRides(c.Request.Context(), principal, params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to list rides")
		return
	}

	common.SuccessResponseWithMeta(c, gin.H{"rides": rides}, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// UpdatePrice changes the per-seat price of an active ride
// PUT /api/v1/driver/rides/:id/price
func (h *Handler) UpdatePrice(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid ride ID")
		return
	}

	var req UpdatePriceRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	ride, err := h.service.UpdateRidePrice(c.Request.Context(), principal, rideID, *req.Price)
	if err != nil {
		common.HandleError(c, err, "failed to update ride price")
		return
	}

	common.SuccessResponse(c, ride)
}

// RegisterRoutes registers ride routes. public is unauthenticated; driver requires the driver role.
func (h *Handler) RegisterRoutes(public, driver *gin.RouterGroup) {
	public.GET("/rides", h.SearchRides)
	public.GET("/rides/:id", h.GetRide)

	driver.POST("/rides", h.CreateRide)
	driver.GET("/rides", h.ListMyRides)
	driver.PUT("/rides/:id/price", h.UpdatePrice)
}
