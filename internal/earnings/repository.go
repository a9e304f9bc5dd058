package earnings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/database"
)

// Repository handles aggregate queries
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new earnings repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// DriverEarnings sums seats times price over confirmed bookings on the driver's completed rides
func (r *Repository) DriverEarnings(ctx context.Context, driverID uuid.UUID) (float64, error) {
	query := `
		SELECT COALESCE(SUM(b.seats_booked * r.price), 0)::float8
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		WHERE r.driver_id = $1 AND r.status = 'completed' AND b.status = 'confirmed'
	`

	var total float64
	if err := r.db.QueryRow(ctx, query, driverID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum driver earnings: %w", err)
	}
	return total, nil
}

// DriverRating averages the passenger reviews a driver received
func (r *Repository) DriverRating(ctx context.Context, driverID uuid.UUID) (RatingSummary, error) {
	return r.rating(ctx, driverID, "passenger_to_driver")
}

// PassengerRating averages the driver reviews a passenger received
func (r *Repository) PassengerRating(ctx context.Context, passengerID uuid.UUID) (RatingSummary, error) {
	return r.rating(ctx, passengerID, "driver_to_passenger")
}

func (r *Repository) rating(ctx context.Context, subjectID uuid.UUID, direction string) (RatingSummary, error) {
	query := `
		SELECT AVG(rating)::float8, COUNT(*)::int
		FROM reviews
		WHERE subject_id = $1 AND direction = $2
	`

	var summary RatingSummary
	if err := r.db.QueryRow(ctx, query, subjectID, direction).Scan(&summary.Average, &summary.Count); err != nil {
		return RatingSummary{}, fmt.Errorf("failed to compute rating: %w", err)
	}
	return summary, nil
}

// RideEarnings breaks earnings down per ride, newest departure first.
// Rides that are not completed contribute nothing.
func (r *Repository) RideEarnings(ctx context.Context, driverID uuid.UUID) ([]RideEarning, error) {
	query := `
		SELECT r.id, r.from_location, r.to_location, r.departure_time, r.status,
			COALESCE(SUM(b.seats_booked) FILTER (WHERE b.status = 'confirmed'), 0)::int,
			CASE WHEN r.status = 'completed'
				THEN COALESCE(SUM(b.seats_booked * r.price) FILTER (WHERE b.status = 'confirmed'), 0)::float8
				ELSE 0::float8
			END
		FROM rides r
		LEFT JOIN bookings b ON b.ride_id = r.id
		WHERE r.driver_id = $1
		GROUP BY r.id
		ORDER BY r.departure_time DESC
	`

	rows, err := r.db.Query(ctx, query, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ride earnings: %w", err)
	}
	defer rows.Close()

	result := []RideEarning{}
	for rows.Next() {
		var e RideEarning
		if err := rows.Scan(&e.RideID, &e.FromLocation, &e.ToLocation, &e.DepartureTime, &e.Status, &e.SeatsBooked, &e.Earnings); err != nil {
			return nil, fmt.Errorf("failed to scan ride earning: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// RideCounts tallies the driver's rides by status
func (r *Repository) RideCounts(ctx context.Context, driverID uuid.UUID) (RideCounts, error) {
	query := `
		SELECT COUNT(*)::int,
			COUNT(*) FILTER (WHERE status = 'active')::int,
			COUNT(*) FILTER (WHERE status = 'completed')::int,
			COUNT(*) FILTER (WHERE status = 'cancelled')::int
		FROM rides
		WHERE driver_id = $1
	`

	var c RideCounts
	if err := r.db.QueryRow(ctx, query, driverID).Scan(&c.Total, &c.Active, &c.Completed, &c.Cancelled); err != nil {
		return RideCounts{}, fmt.Errorf("failed to count rides: %w", err)
	}
	return c, nil
}
