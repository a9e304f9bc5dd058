package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/richxcame/seatshare/pkg/database"
)

// Repository reads platform-wide counters
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new analytics repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// GetUserCounts counts passenger and driver accounts
func (r *Repository) GetUserCounts(ctx context.Context) (UserCounts, error) {
	var c UserCounts
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)::int,
			COUNT(*) FILTER (WHERE NOT is_banned)::int,
			COUNT(*) FILTER (WHERE is_banned)::int
		FROM users
		WHERE role <> 'admin'
	`).Scan(&c.Total, &c.Active, &c.Banned)
	if err != nil {
		return c, fmt.Errorf("failed to count users: %w", err)
	}
	return c, nil
}

// GetDriverCounts counts driver profiles. Banned profiles are not counted as pending.
func (r *Repository) GetDriverCounts(ctx context.Context) (DriverCounts, error) {
	var c DriverCounts
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)::int,
			COUNT(*) FILTER (WHERE is_verified AND NOT is_banned)::int,
			COUNT(*) FILTER (WHERE NOT is_verified AND NOT is_banned)::int,
			COUNT(*) FILTER (WHERE is_banned)::int
		FROM drivers
	`).Scan(&c.Total, &c.Verified, &c.Pending, &c.Banned)
	if err != nil {
		return c, fmt.Errorf("failed to count drivers: %w", err)
	}
	return c, nil
}

// GetRideCounts counts rides per status
func (r *Repository) GetRideCounts(ctx context.Context) (RideCounts, error) {
	var c RideCounts
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)::int,
			COUNT(*) FILTER (WHERE status = 'active')::int,
			COUNT(*) FILTER (WHERE status = 'completed')::int,
			COUNT(*) FILTER (WHERE status = 'cancelled')::int
		FROM rides
	`).Scan(&c.Total, &c.Active, &c.Completed, &c.Cancelled)
	if err != nil {
		return c, fmt.Errorf("failed to count rides: %w", err)
	}
	return c, nil
}

// GetRevenue sums seats times the ride price over confirmed bookings of completed rides
func (r *Repository) GetRevenue(ctx context.Context, since time.Time) (float64, float64, error) {
	var total, sinceTotal float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(b.seats_booked * r.price), 0)::float8,
			COALESCE(SUM(b.seats_booked * r.price) FILTER (WHERE r.completed_at >= $1), 0)::float8
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		WHERE r.status = 'completed' AND b.status = 'confirmed'
	`, since).Scan(&total, &sinceTotal)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, sinceTotal, nil
}
