package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/richxcame/seatshare/pkg/common"
)

// Handler handles HTTP requests for the admin overview
type Handler struct {
	service *Service
}

// NewHandler creates a new analytics handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetOverview returns platform counters and revenue
// GET /api/v1/admin/overview
func (h *Handler) GetOverview(c *gin.Context) {
	metrics, err := h.service.GetDashboardMetrics(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "failed to load overview")
		return
	}
	common.SuccessResponse(c, metrics)
}

// RegisterRoutes registers analytics routes on the admin group
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/overview", h.GetOverview)
}
