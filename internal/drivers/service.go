package drivers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/logger"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/richxcame/seatshare/pkg/storage"
	"go.uber.org/zap"
)

// ServiceConfig holds document upload limits
type ServiceConfig struct {
	MaxFileSizeMB   int
	PresignedURLTTL time.Duration
}

// Service handles driver profiles and their verification
type Service struct {
	repo    RepositoryInterface
	storage storage.Storage
	config  ServiceConfig
}

// NewService creates a new drivers service
func NewService(repo RepositoryInterface, store storage.Storage, config ServiceConfig) *Service {
	if store == nil {
		store = storage.Disabled{}
	}
	if config.MaxFileSizeMB <= 0 {
		config.MaxFileSizeMB = 5
	}
	if config.PresignedURLTTL <= 0 {
		config.PresignedURLTTL = 15 * time.Minute
	}
	return &Service{repo: repo, storage: store, config: config}
}

// CreateProfile registers the caller's driver profile with its photograph and licence
func (s *Service) CreateProfile(ctx context.Context, p models.Principal, req *ProfileRequest, photo, licence *Document) (*Driver, error) {
	if err := s.checkDriver(p); err != nil {
		return nil, err
	}
	if photo == nil || licence == nil {
		return nil, common.NewBadRequestError("photograph and driving licence are required", nil)
	}
	if err := s.validateDocument(photo); err != nil {
		return nil, err
	}
	if err := s.validateDocument(licence); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUserID(ctx, p.UserID); err == nil {
		return nil, common.NewConflictErrorWrap("driver profile already exists", ErrProfileExists)
	} else if !errors.Is(err, ErrDriverNotFound) {
		return nil, common.NewInternalError("failed to load driver profile", err)
	}

	d := &Driver{
		ID:             uuid.New(),
		UserID:         p.UserID,
		FullName:       strings.TrimSpace(req.FullName),
		PrimaryPhone:   strings.TrimSpace(req.PrimaryPhone),
		SecondaryPhone: strings.TrimSpace(req.SecondaryPhone),
		Address:        strings.TrimSpace(req.Address),
		AadhaarNumber:  req.AadhaarNumber,
		VehicleNumber:  strings.ToUpper(strings.TrimSpace(req.VehicleNumber)),
		CarMake:        strings.TrimSpace(req.CarMake),
		CarModel:       strings.TrimSpace(req.CarModel),
	}

	var uploaded []string
	cleanup := func() {
		for _, key := range uploaded {
			if err := s.storage.Delete(ctx, key); err != nil {
				logger.WithContext(ctx).Warn("failed to remove orphaned document", zap.String("key", key), zap.Error(err))
			}
		}
	}

	photoResult, err := s.upload(ctx, p.UserID, photo)
	if err != nil {
		return nil, err
	}
	uploaded = append(uploaded, photoResult.Key)
	d.PhotographURL, d.PhotographKey = photoResult.URL, photoResult.Key

	licenceResult, err := s.upload(ctx, p.UserID, licence)
	if err != nil {
		cleanup()
		return nil, err
	}
	uploaded = append(uploaded, licenceResult.Key)
	d.DrivingLicenseURL, d.DrivingLicenseKey = licenceResult.URL, licenceResult.Key

	if err := s.repo.Create(ctx, d); err != nil {
		cleanup()
		switch {
		case errors.Is(err, ErrAadhaarTaken):
			return nil, common.NewConflictErrorWrap("aadhaar number already registered", err)
		case errors.Is(err, ErrProfileExists):
			return nil, common.NewConflictErrorWrap("driver profile already exists", err)
		}
		return nil, common.NewInternalError("failed to save driver profile", err)
	}

	logger.WithContext(ctx).Info("driver profile submitted",
		zap.String("driver_id", d.ID.String()),
		zap.String("user_id", p.UserID.String()),
	)
	return d, nil
}

// GetProfile returns the caller's driver profile
func (s *Service) GetProfile(ctx context.Context, p models.Principal) (*Driver, error) {
	d, err := s.repo.GetByUserID(ctx, p.UserID)
	if err != nil {
		return nil, mapError(err, "failed to load driver profile")
	}
	return d, nil
}

// UpdateProfile edits the caller's profile. New documents replace the stored ones.
func (s *Service) UpdateProfile(ctx context.Context, p models.Principal, req *UpdateProfileRequest, photo, licence *Document) (*Driver, error) {
	if err := s.checkDriver(p); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByUserID(ctx, p.UserID)
	if err != nil {
		return nil, mapError(err, "failed to load driver profile")
	}

	setString(&d.FullName, req.FullName)
	setString(&d.PrimaryPhone, req.PrimaryPhone)
	setString(&d.SecondaryPhone, req.SecondaryPhone)
	setString(&d.Address, req.Address)
	setString(&d.VehicleNumber, req.VehicleNumber)
	d.VehicleNumber = strings.ToUpper(d.VehicleNumber)
	setString(&d.CarMake, req.CarMake)
	setString(&d.CarModel, req.CarModel)

	var replaced []string
	for _, doc := range []*Document{photo, licence} {
		if doc == nil {
			continue
		}
		if err := s.validateDocument(doc); err != nil {
			return nil, err
		}
		result, err := s.upload(ctx, p.UserID, doc)
		if err != nil {
			return nil, err
		}
		if doc.Type == storage.DocumentPhoto {
			replaced = append(replaced, d.PhotographKey)
			d.PhotographURL, d.PhotographKey = result.URL, result.Key
		} else {
			replaced = append(replaced, d.DrivingLicenseKey)
			d.DrivingLicenseURL, d.DrivingLicenseKey = result.URL, result.Key
		}
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, mapError(err, "failed to update driver profile")
	}

	for _, key := range replaced {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			logger.WithContext(ctx).Warn("failed to remove replaced document", zap.String("key", key), zap.Error(err))
		}
	}
	return d, nil
}

// ========================================
// ADMIN
// ========================================

// ListDrivers lists profiles by verification state
func (s *Service) ListDrivers(ctx context.Context, p models.Principal, status StatusFilter, limit, offset int) ([]*Driver, int64, error) {
	if !p.IsAdmin() {
		return nil, 0, common.NewForbiddenError("admin access required")
	}
	switch status {
	case StatusAll, StatusPending, StatusVerified, StatusBanned:
	default:
		return nil, 0, common.NewBadRequestError("status must be pending, verified or banned", nil)
	}

	drivers, total, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list drivers", err)
	}
	return drivers, total, nil
}

// Verify approves a driver profile so its owner can publish rides
func (s *Service) Verify(ctx context.Context, p models.Principal, driverID uuid.UUID) error {
	return s.adminAction(ctx, p, driverID, "verified", func() error {
		return s.repo.SetVerified(ctx, driverID)
	})
}

// SetBanned bans or unbans a driver profile
func (s *Service) SetBanned(ctx context.Context, p models.Principal, driverID uuid.UUID, banned bool) error {
	action := "unbanned"
	if banned {
		action = "banned"
	}
	return s.adminAction(ctx, p, driverID, action, func() error {
		return s.repo.SetBanned(ctx, driverID, banned)
	})
}

// Reject deletes an unverified profile and its documents
func (s *Service) Reject(ctx context.Context, p models.Principal, driverID uuid.UUID) error {
	if !p.IsAdmin() {
		return common.NewForbiddenError("admin access required")
	}

	d, err := s.repo.GetByID(ctx, driverID)
	if err != nil {
		return mapError(err, "failed to load driver profile")
	}

	if err := s.repo.DeleteUnverified(ctx, driverID); err != nil {
		return mapError(err, "failed to reject driver")
	}

	for _, key := range []string{d.PhotographKey, d.DrivingLicenseKey} {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			logger.WithContext(ctx).Warn("failed to remove rejected driver document", zap.String("key", key), zap.Error(err))
		}
	}

	logger.WithContext(ctx).Info("driver rejected",
		zap.String("driver_id", driverID.String()),
		zap.String("admin_id", p.UserID.String()),
	)
	return nil
}

// DocumentLinks returns short-lived download links for a driver's documents
func (s *Service) DocumentLinks(ctx context.Context, p models.Principal, driverID uuid.UUID) ([]DocumentLink, error) {
	if !p.IsAdmin() {
		return nil, common.NewForbiddenError("admin access required")
	}

	d, err := s.repo.GetByID(ctx, driverID)
	if err != nil {
		return nil, mapError(err, "failed to load driver profile")
	}

	links := []DocumentLink{}
	for _, doc := range []struct {
		t   storage.DocumentType
		key string
	}{{storage.DocumentPhoto, d.PhotographKey}, {storage.DocumentLicence, d.DrivingLicenseKey}} {
		if doc.key == "" {
			continue
		}
		presigned, err := s.storage.GetPresignedDownloadURL(ctx, doc.key, s.config.PresignedURLTTL)
		if err != nil {
			return nil, storageError(err)
		}
		links = append(links, DocumentLink{Type: doc.t, URL: presigned.URL, ExpiresAt: presigned.ExpiresAt})
	}
	return links, nil
}

func (s *Service) adminAction(ctx context.Context, p models.Principal, driverID uuid.UUID, action string, fn func() error) error {
	if !p.IsAdmin() {
		return common.NewForbiddenError("admin access required")
	}
	if err := fn(); err != nil {
		return mapError(err, "failed to update driver")
	}
	logger.WithContext(ctx).Info("driver "+action,
		zap.String("driver_id", driverID.String()),
		zap.String("admin_id", p.UserID.String()),
	)
	return nil
}

func (s *Service) checkDriver(p models.Principal) error {
	if p.Banned {
		return common.NewForbiddenError("account is banned").WithKey("account.error.banned")
	}
	if !p.IsDriver() {
		return common.NewForbiddenError("only driver accounts have a driver profile")
	}
	return nil
}

func (s *Service) validateDocument(doc *Document) error {
	maxSize := int64(s.config.MaxFileSizeMB) * 1024 * 1024
	if doc.Size > maxSize {
		return common.NewBadRequestError(fmt.Sprintf("file size exceeds maximum of %d MB", s.config.MaxFileSizeMB), nil)
	}
	contentType := doc.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.GetMimeTypeFromExtension(doc.Filename)
		doc.ContentType = contentType
	}
	if !storage.ValidateMimeType(contentType, doc.Type.AllowedTypes()) {
		return common.NewBadRequestError(fmt.Sprintf("unsupported file type for %s", doc.Type), nil)
	}
	return nil
}

func (s *Service) upload(ctx context.Context, userID uuid.UUID, doc *Document) (*storage.UploadResult, error) {
	key := storage.GenerateDocumentKey(userID, doc.Type, doc.Filename)
	result, err := s.storage.Upload(ctx, key, doc.Reader, doc.Size, doc.ContentType)
	if err != nil {
		logger.WithContext(ctx).Error("failed to upload driver document", zap.String("type", string(doc.Type)), zap.Error(err))
		return nil, storageError(err)
	}
	return result, nil
}

func storageError(err error) error {
	if errors.Is(err, storage.ErrDisabled) {
		return common.NewServiceUnavailableError("document storage is not configured")
	}
	return common.NewInternalError("failed to store document", err)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func mapError(err error, fallback string) error {
	switch {
	case errors.Is(err, ErrDriverNotFound):
		return common.NewNotFoundError("driver profile not found", err)
	case errors.Is(err, ErrAlreadyVerified):
		return common.NewConflictErrorWrap("verified drivers cannot be rejected, ban them instead", err)
	}
	return common.NewInternalError(fallback, err)
}
