package analytics

import (
	"context"
	"time"

	"github.com/richxcame/seatshare/internal/rides"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/i18n"
	"golang.org/x/sync/errgroup"
)

// AnalyticsRepository defines the persistence operations required by the service.
type AnalyticsRepository interface {
	GetUserCounts(ctx context.Context) (UserCounts, error)
	GetDriverCounts(ctx context.Context) (DriverCounts, error)
	GetRideCounts(ctx context.Context) (RideCounts, error)
	// GetRevenue sums completed-ride revenue overall and for rides completed at or after since
	GetRevenue(ctx context.Context, since time.Time) (total, sinceTotal float64, err error)
}

// Service handles analytics business logic
type Service struct {
	repo AnalyticsRepository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates a new analytics service. Months are counted in loc.
func NewService(repo AnalyticsRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// GetDashboardMetrics retrieves overall platform metrics
func (s *Service) GetDashboardMetrics(ctx context.Context) (*DashboardMetrics, error) {
	now := s.now().In(s.loc)
	metrics := &DashboardMetrics{
		MonthStart:  monthStart(now),
		GeneratedAt: now,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		metrics.Users, err = s.repo.GetUserCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		metrics.Drivers, err = s.repo.GetDriverCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		metrics.Rides, err = s.repo.GetRideCounts(gctx)
		return err
	})
	g.Go(func() error {
		total, month, err := s.repo.GetRevenue(gctx, metrics.MonthStart)
		if err != nil {
			return err
		}
		metrics.Revenue = Revenue{
			Total:        rides.RoundMoney(total),
			CurrentMonth: rides.RoundMoney(month),
			Currency:     i18n.DefaultCurrency,
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, common.NewInternalError("failed to load overview", err)
	}
	return metrics, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
