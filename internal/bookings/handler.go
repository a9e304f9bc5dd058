package bookings

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/seatshare/internal/rides"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/middleware"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/richxcame/seatshare/pkg/pagination"
)

// ServiceInterface is what the handler needs from the bookings service
type ServiceInterface interface {
	CreateBooking(ctx context.Context, p models.Principal, rideID uuid.UUID, seats int) (*Booking, error)
	EditBooking(ctx context.Context, p models.Principal, bookingID uuid.UUID, newSeats int) (*Booking, error)
	CancelBooking(ctx context.Context, p models.Principal, bookingID uuid.UUID) (*Booking, error)
	CancelRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*CancelRideResult, error)
	CompleteRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*rides.Ride, error)
	GetBooking(ctx context.Context, p models.Principal, bookingID uuid.UUID) (*Booking, error)
	ListPassengerBookings(ctx context.Context, p models.Principal, limit, offset int) ([]*BookingView, int64, error)
	ListRideBookings(ctx context.Context, p models.Principal, rideID uuid.UUID) ([]*RideBooking, error)
}

// Handler handles HTTP requests for bookings and ride lifecycle
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new bookings handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// CreateBooking books seats on a ride
// POST /api/v1/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateBookingRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), principal, req.RideID, req.Seats)
	if err != nil {
		common.HandleError(c, err, "failed to create booking")
		return
	}

	common.CreatedResponse(c, booking)
}

// ListBookings returns the caller's bookings
// GET /api/v1/bookings?limit=20&offset=0
func (h *Handler) ListBookings(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	params := pagination.ParseParams(c)

	views, total, err := h.service.ListPassengerBookings(c.Request.Context(), principal, params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to list bookings")
		return
	}

	common.SuccessResponseWithMeta(c, gin.H{"bookings": views}, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// GetBooking returns one booking
// GET /api/v1/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	principal, bookingID, ok := principalAndID(c, "invalid booking ID")
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), principal, bookingID)
	if err != nil {
		common.HandleError(c, err, "failed to get booking")
		return
	}

	common.SuccessResponse(c, booking)
}

// EditSeats changes the seat count of a booking
// PUT /api/v1/bookings/:id/seats
func (h *Handler) EditSeats(c *gin.Context) {
	principal, bookingID, ok := principalAndID(c, "invalid booking ID")
	if !ok {
		return
	}

	var req EditSeatsRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	booking, err := h.service.EditBooking(c.Request.Context(), principal, bookingID, req.Seats)
	if err != nil {
		common.HandleError(c, err, "failed to update booking")
		return
	}

	common.SuccessResponse(c, booking)
}

// CancelBooking cancels a booking
// POST /api/v1/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	principal, bookingID, ok := principalAndID(c, "invalid booking ID")
	if !ok {
		return
	}

	booking, err := h.service.CancelBooking(c.Request.Context(), principal, bookingID)
	if err != nil {
		common.HandleError(c, err, "failed to cancel booking")
		return
	}

	common.SuccessResponse(c, booking)
}

// ========================================
// RIDE LIFECYCLE (driver and admin)
// ========================================

// CancelRide cancels a ride and its bookings
// POST /api/v1/driver/rides/:id/cancel
func (h *Handler) CancelRide(c *gin.Context) {
	principal, rideID, ok := principalAndID(c, "invalid ride ID")
	if !ok {
		return
	}

	result, err := h.service.CancelRide(c.Request.Context(), principal, rideID)
	if err != nil {
		common.HandleError(c, err, "failed to cancel ride")
		return
	}

	common.SuccessResponse(c, result)
}

// CompleteRide marks a ride completed
// POST /api/v1/driver/rides/:id/complete
func (h *Handler) CompleteRide(c *gin.Context) {
	principal, rideID, ok := principalAndID(c, "invalid ride ID")
	if !ok {
		return
	}

	ride, err := h.service.CompleteRide(c.Request.Context(), principal, rideID)
	if err != nil {
		common.HandleError(c, err, "failed to complete ride")
		return
	}

	common.SuccessResponse(c, ride)
}

// ListRideBookings lists who booked a ride
// GET /api/v1/driver/rides/:id/bookings
func (h *Handler) ListRideBookings(c *gin.Context) {
	principal, rideID, ok := principalAndID(c, "invalid ride ID")
	if !ok {
		return
	}

	list, err := h.service.ListRideBookings(c.Request.Context(), principal, rideID)
	if err != nil {
		common.HandleError(c, err, "failed to list ride bookings")
		return
	}

	seats := 0
	for _, b := range list {
		seats += b.SeatsBooked
	}
	common.SuccessResponse(c, gin.H{"bookings": list, "seats_booked": seats})
}

// RegisterRoutes registers booking routes
func (h *Handler) RegisterRoutes(authed, driver, admin *gin.RouterGroup) {
	authed.POST("/bookings", h.CreateBooking)
	authed.GET("/bookings", h.ListBookings)
	authed.GET("/bookings/:id", h.GetBooking)
	authed.PUT("/bookings/:id/seats", h.EditSeats)
	authed.POST("/bookings/:id/cancel", h.CancelBooking)

	driver.POST("/rides/:id/complete", h.CompleteRide)
	driver.POST("/rides/:id/cancel", h.CancelRide)
	driver.GET("/rides/:id/bookings", h.ListRideBookings)

	admin.POST("/rides/:id/complete", h.CompleteRide)
	admin.POST("/rides/:id/cancel", h.CancelRide)
}

func principalAndID(c *gin.Context, invalidMessage string) (models.Principal, uuid.UUID, bool) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return models.Principal{}, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, invalidMessage)
		return models.Principal{}, uuid.Nil, false
	}
	return principal, id, true
}
