package reviews

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

// ServiceInterface is what the handler needs from the reviews service
type ServiceInterface interface {
	ReviewDriver(ctx context.Context, p models.Principal, bookingID uuid.UUID, req *CreateReviewRequest) (*Review, error)
	ReviewPassenger(ctx context.Context, p models.Principal, bookingID uuid.UUID, req *CreateReviewRequest) (*Review, error)
	ListDriverReviews(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*ReceivedReview, int64, error)
}

// Handler handles HTTP requests for reviews
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new reviews handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ReviewDriver handles a passenger reviewing the driver
// POST /api/v1/bookings/:id/review
func (h *Handler) ReviewDriver(c *gin.Context) {
	h.create(c, h.service.ReviewDriver)
}

// ReviewPassenger handles a driver reviewing a passenger
// POST /api/v1/driver/bookings/:id/review
func (h *Handler) ReviewPassenger(c *gin.Context) {
	h.create(c, h.service.ReviewPassenger)
}

type createFunc func(ctx context.Context, p models.Principal, bookingID uuid.UUID, req *CreateReviewRequest) (*Review, error)

func (h *Handler) create(c *gin.Context, create createFunc) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid booking ID")
		return
	}

	var req CreateReviewRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	review, err := create(c.Request.Context(), principal, bookingID, &req)
	if err != nil {
		common.HandleError(c, err, "failed to save review")
		return
	}

	common.CreatedResponse(c, review)
}

// ListDriverReviews returns reviews left for a driver
// GET /api/v1/drivers/:id/reviews
func (h *Handler) ListDriverReviews(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid driver ID")
		return
	}
	params := pagination.ParseParams(c)

	list, total, err := h.service.ListDriverReviews(c.Request.Context(), driverID, params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to list reviews")
		return
	}

	common.SuccessResponseWithMeta(c, gin.H{"reviews": list}, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// RegisterRoutes registers review routes
func (h *Handler) RegisterRoutes(authed, driver *gin.RouterGroup) {
	authed.POST("/bookings/:id/review", h.ReviewDriver)
	authed.GET("/drivers/:id/reviews", h.ListDriverReviews)

	driver.POST("/bookings/:id/review", h.ReviewPassenger)
}
