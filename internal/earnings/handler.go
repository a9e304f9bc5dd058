package earnings

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/i18n"
	"github.com/richxcame/seatshare/pkg/middleware"
)

// Handler handles HTTP requests for driver statistics
type Handler struct {
	service *Service
}

// NewHandler creates a new earnings handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetStats returns the driver dashboard summary
// GET /api/v1/driver/stats
func (h *Handler) GetStats(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.service.MySummary(c.Request.Context(), principal)
	if err != nil {
		common.HandleError(c, err, "failed to get driver stats")
		return
	}

	lang := i18n.LanguageFromHeader(c.GetHeader("Accept-Language"))
	ratingLabel := i18n.Translate("rating.none", lang)
	if summary.Rating.Rated() {
		ratingLabel = fmt.Sprintf("%.1f", *summary.Rating.Average)
	}

	common.SuccessResponse(c, gin.H{
		"summary":      summary,
		"message":      i18n.Translate("earnings.summary", lang, i18n.FormatAmount(summary.TotalEarnings, summary.Currency)),
		"rating_label": ratingLabel,
	})
}

// GetRideEarnings returns earnings per ride
// GET /api/v1/driver/earnings/rides
func (h *Handler) GetRideEarnings(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.service.MyRideEarnings(c.Request.Context(), principal)
	if err != nil {
		common.HandleError(c, err, "failed to get ride earnings")
		return
	}

	common.SuccessResponse(c, gin.H{"rides": list})
}

// RegisterRoutes registers driver statistics routes
func (h *Handler) RegisterRoutes(driver *gin.RouterGroup) {
	driver.GET("/stats", h.GetStats)
	driver.GET("/earnings/rides", h.GetRideEarnings)
}
