package safety

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/middleware"
	"github.com/richxcame/seatshare/pkg/pagination"
)

// Handler handles HTTP requests for SOS alerts
type Handler struct {
	service *Service
}

// NewHandler creates a new safety handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RaiseSOS handles an emergency alert from a rider or driver
// POST /api/v1/sos
func (h *Handler) RaiseSOS(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RaiseSOSRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	alert, err := h.service.RaiseSOS(c.Request.Context(), principal, &req)
	if err != nil {
		common.HandleError(c, err, "failed to raise sos")
		return
	}

	common.SuccessResponseWithStatus(c, http.StatusCreated, alert, "help is on the way")
}

// ListActive lists unresolved alerts
// GET /api/v1/admin/sos
func (h *Handler) ListActive(c *gin.Context) {
	params := pagination.ParseParams(c)

	alerts, total, err := h.service.ListActiveAlerts(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to list sos alerts")
		return
	}

	common.SuccessResponseWithMeta(c, gin.H{"alerts": alerts}, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// Resolve closes an alert
// POST /api/v1/admin/sos/:id/resolve
func (h *Handler) Resolve(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid alert ID")
		return
	}

	alert, err := h.service.ResolveAlert(c.Request.Context(), principal, id)
	if err != nil {
		common.HandleError(c, err, "failed to resolve sos alert")
		return
	}

	common.SuccessResponse(c, alert)
}

// RegisterRoutes registers safety routes
func (h *Handler) RegisterRoutes(authed, admin *gin.RouterGroup) {
	authed.POST("/sos", h.RaiseSOS)

	admin.GET("/sos", h.ListActive)
	admin.POST("/sos/:id/resolve", h.Resolve)
}
