package safety

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/logger"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/richxcame/seatshare/pkg/security"
	"go.uber.org/zap"
)

var sosAlertsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "seatshare_sos_alerts_total",
		Help: "SOS alerts raised, by the role of the user raising them",
	},
	[]string{"role"},
)

// RepositoryInterface defines the interface for SOS alert storage
type RepositoryInterface interface {
	CreateAlert(ctx context.Context, a *EmergencyAlert) error
	GetAlert(ctx context.Context, id uuid.UUID) (*EmergencyAlert, error)
	ListActive(ctx context.Context, limit, offset int) ([]*EmergencyAlert, int64, error)
	Resolve(ctx context.Context, id, resolvedBy uuid.UUID) (*EmergencyAlert, error)
}

// Service handles SOS alerts
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new safety service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// RaiseSOS records an emergency alert. Banned users can still raise one.
func (s *Service) RaiseSOS(ctx context.Context, p models.Principal, req *RaiseSOSRequest) (*EmergencyAlert, error) {
	location := security.CleanText(req.Location, 300)
	if location == "" {
		return nil, common.NewBadRequestError("location is required", nil)
	}

	alert := &EmergencyAlert{
		ID:       uuid.New(),
		RaisedBy: p.UserID,
		Role:     p.Role,
		RideID:   req.RideID,
		Location: location,
		Message:  security.CleanText(req.Message, 1000),
		Status:   EmergencyStatusActive,
	}
	if err := s.repo.CreateAlert(ctx, alert); err != nil {
		if errors.Is(err, ErrUnknownRide) {
			return nil, common.NewBadRequestError("ride not found", err)
		}
		return nil, common.NewInternalError("failed to raise sos", err)
	}
	sosAlertsTotal.WithLabelValues(string(p.Role)).Inc()

	fields := []zap.Field{
		zap.String("alert_id", alert.ID.String()),
		zap.String("raised_by", p.UserID.String()),
		zap.String("role", string(p.Role)),
		zap.String("location", location),
	}
	if alert.RideID != nil {
		fields = append(fields, zap.String("ride_id", alert.RideID.String()))
	}
	logger.WithContext(ctx).Warn("sos raised", fields...)
	return alert, nil
}

// ListActiveAlerts returns alerts that are not resolved yet
func (s *Service) ListActiveAlerts(ctx context.Context, limit, offset int) ([]*EmergencyAlert, int64, error) {
	alerts, total, err := s.repo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list sos alerts", err)
	}
	return alerts, total, nil
}

// ResolveAlert closes an alert. Resolving a resolved alert returns it unchanged.
func (s *Service) ResolveAlert(ctx context.Context, admin models.Principal, id uuid.UUID) (*EmergencyAlert, error) {
	if !admin.IsAdmin() {
		return nil, common.NewForbiddenError("admin access required")
	}

	alert, err := s.repo.Resolve(ctx, id, admin.UserID)
	if err != nil {
		return nil, common.NewInternalError("failed to resolve sos alert", err)
	}
	if alert != nil {
		logger.WithContext(ctx).Info("sos resolved",
			zap.String("alert_id", id.String()),
			zap.String("resolved_by", admin.UserID.String()),
		)
		return alert, nil
	}

	alert, err = s.repo.GetAlert(ctx, id)
	if errors.Is(err, ErrAlertNotFound) {
		return nil, common.NewNotFoundError("sos alert not found", err)
	}
	if err != nil {
		return nil, common.NewInternalError("failed to get sos alert", err)
	}
	return alert, nil
}
