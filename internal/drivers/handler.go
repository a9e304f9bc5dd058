package drivers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/middleware"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/richxcame/seatshare/pkg/pagination"
	"github.com/richxcame/seatshare/pkg/storage"
)

const (
	photographField     = "photograph"
	drivingLicenseField = "driving_license"
)

// ServiceInterface is what the handler needs from the drivers service
type ServiceInterface interface {
	CreateProfile(ctx context.Context, p models.Principal, req *ProfileRequest, photo, licence *Document) (*Driver, error)
	GetProfile(ctx context.Context, p models.Principal) (*Driver, error)
	UpdateProfile(ctx context.Context, p models.Principal, req *UpdateProfileRequest, photo, licence *Document) (*Driver, error)
	ListDrivers(ctx context.Context, p models.Principal, status StatusFilter, limit, offset int) ([]*Driver, int64, error)
	Verify(ctx context.Context, p models.Principal, driverID uuid.UUID) error
	SetBanned(ctx context.Context, p models.Principal, driverID uuid.UUID, banned bool) error
	Reject(ctx context.Context, p models.Principal, driverID uuid.UUID) error
	DocumentLinks(ctx context.Context, p models.Principal, driverID uuid.UUID) ([]DocumentLink, error)
}

// Handler handles HTTP requests for driver profiles
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new drivers handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// CreateProfile submits the caller's driver profile for verification
// POST /api/v1/driver/profile (multipart: fields + photograph + driving_license)
func (h *Handler) CreateProfile(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ProfileRequest
	if !middleware.ValidateAndBindForm(c, &req) {
		return
	}

	photo, err := formDocument(c, photographField, storage.DocumentPhoto)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "photograph is required")
		return
	}
	defer closeDocument(photo)
	licence, err := formDocument(c, drivingLicenseField, storage.DocumentLicence)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "driving_license is required")
		return
	}
	defer closeDocument(licence)

	driver, err := h.service.CreateProfile(c.Request.Context(), principal, &req, photo, licence)
	if err != nil {
		common.HandleError(c, err, "failed to create driver profile")
		return
	}

	common.CreatedResponse(c, driver)
}

// GetProfile returns the caller's driver profile
// GET /api/v1/driver/profile
func (h *Handler) GetProfile(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	driver, err := h.service.GetProfile(c.Request.Context(), principal)
	if err != nil {
		common.HandleError(c, err, "failed to get driver profile")
		return
	}

	common.SuccessResponse(c, gin.H{"driver": driver, "status": driver.Status()})
}

// UpdateProfile edits the caller's driver profile. Both documents are optional.
// PUT /api/v1/driver/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if !middleware.ValidateAndBindForm(c, &req) {
		return
	}

	photo, err := optionalDocument(c, photographField, storage.DocumentPhoto)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid photograph upload")
		return
	}
	defer closeDocument(photo)
	licence, err := optionalDocument(c, drivingLicenseField, storage.DocumentLicence)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid driving_license upload")
		return
	}
	defer closeDocument(licence)

	driver, err := h.service.UpdateProfile(c.Request.Context(), principal, &req, photo, licence)
	if err != nil {
		common.HandleError(c, err, "failed to update driver profile")
		return
	}

	common.SuccessResponse(c, driver)
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ListDrivers lists driver profiles
// GET /api/v1/admin/drivers?status=pending&limit=20&offset=0
func (h *Handler) ListDrivers(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	params := pagination.ParseParams(c)

	drivers, total, err := h.service.ListDrivers(c.Request.Context(), principal, StatusFilter(c.Query("status")), params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to list drivers")
		return
	}

	common.SuccessResponseWithMeta(c, gin.H{"drivers": drivers}, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// VerifyDriver approves a driver
// POST /api/v1/admin/drivers/:id/verify
func (h *Handler) VerifyDriver(c *gin.Context) {
	h.adminAction(c, "driver verified", func(ctx context.Context, p models.Principal, id uuid.UUID) error {
		return h.service.Verify(ctx, p, id)
	})
}

// BanDriver bans a driver
// POST /api/v1/admin/drivers/:id/ban
func (h *Handler) BanDriver(c *gin.Context) {
	h.adminAction(c, "driver banned", func(ctx context.Context, p models.Principal, id uuid.UUID) error {
		return h.service.SetBanned(ctx, p, id, true)
	})
}

// UnbanDriver lifts a driver ban
// POST /api/v1/admin/drivers/:id/unban
func (h *Handler) UnbanDriver(c *gin.Context) {
	h.adminAction(c, "driver unbanned", func(ctx context.Context, p models.Principal, id uuid.UUID) error {
		return h.service.SetBanned(ctx, p, id, false)
	})
}

// RejectDriver deletes an unverified driver profile
// DELETE /api/v1/admin/drivers/:id
func (h *Handler) RejectDriver(c *gin.Context) {
	h.adminAction(c, "driver rejected", func(ctx context.Context, p models.Principal, id uuid.UUID) error {
		return h.service.Reject(ctx, p, id)
	})
}

// GetDocuments returns download links for a driver's documents
// GET /api/v1/admin/drivers/:id/documents
func (h *Handler) GetDocuments(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid driver ID")
		return
	}

	links, err := h.service.DocumentLinks(c.Request.Context(), principal, driverID)
	if err != nil {
		common.HandleError(c, err, "failed to get driver documents")
		return
	}

	common.SuccessResponse(c, gin.H{"documents": links})
}

func (h *Handler) adminAction(c *gin.Context, message string, fn func(ctx context.Context, p models.Principal, id uuid.UUID) error) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid driver ID")
		return
	}

	if err := fn(c.Request.Context(), principal, driverID); err != nil {
		common.HandleError(c, err, "failed to update driver")
		return
	}

	common.SuccessResponse(c, gin.H{"message": message})
}

// RegisterRoutes registers driver profile routes
func (h *Handler) RegisterRoutes(driver, admin *gin.RouterGroup) {
	driver.POST("/profile", h.CreateProfile)
	driver.GET("/profile", h.GetProfile)
	driver.PUT("/profile", h.UpdateProfile)

	admin.GET("/drivers", h.ListDrivers)
	admin.POST("/drivers/:id/verify", h.VerifyDriver)
	admin.POST("/drivers/:id/ban", h.BanDriver)
	admin.POST("/drivers/:id/unban", h.UnbanDriver)
	admin.DELETE("/drivers/:id", h.RejectDriver)
	admin.GET("/drivers/:id/documents", h.GetDocuments)
}

func formDocument(c *gin.Context, field string, docType storage.DocumentType) (*Document, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &Document{
		Type:        docType,
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, nil
}

func optionalDocument(c *gin.Context, field string, docType storage.DocumentType) (*Document, error) {
	doc, err := formDocument(c, field, docType)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return doc, err
}

func closeDocument(doc *Document) {
	if doc == nil {
		return
	}
	if closer, ok := doc.Reader.(io.Closer); ok {
		_ = closer.Close()
	}
}
