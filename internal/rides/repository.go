package rides

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/seatshare/pkg/database"
)

// Shared column list for ride queries
const rideColumns = `
	r.id, r.driver_id, r.from_location, r.to_location, r.price,
	r.total_seats, r.available_seats, r.departure_time, r.status,
	r.completed_at, r.cancelled_at, r.created_at, r.updated_at`

// Columns is the ride column list for queries that alias rides as r
const Columns = rideColumns

func rideDest(r *Ride) []any {
	return []any{
		&r.ID, &r.DriverID, &r.FromLocation, &r.ToLocation, &r.Price,
		&r.TotalSeats, &r.AvailableSeats, &r.DepartureTime, &r.Status,
		&r.CompletedAt, &r.CancelledAt, &r.CreatedAt, &r.UpdatedAt,
	}
}

// ScanRide scans a row selected with the ride column list
func ScanRide(row pgx.Row) (*Ride, error) {
	r := &Ride{}
	if err := row.Scan(rideDest(r)...); err != nil {
		return nil, err
	}
	return r, nil
}

// Repository handles ride data access
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new rides repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// CreateRide inserts a new ride
func (r *Repository) CreateRide(ctx context.Context, ride *Ride) error {
	query := `
		INSERT INTO rides (id, driver_id, from_location, to_location, price,
			total_seats, available_seats, departure_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		ride.ID, ride.DriverID, ride.FromLocation, ride.ToLocation, ride.Price,
		ride.TotalSeats, ride.AvailableSeats, ride.DepartureTime, ride.Status,
		ride.CreatedAt, ride.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}
	return nil
}

// GetRide returns a ride by ID
func (r *Repository) GetRide(ctx context.Context, id uuid.UUID) (*Ride, error) {
	query := `SELECT` + rideColumns + ` FROM rides r WHERE r.id = $1`

	ride, err := ScanRide(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return ride, nil
}

// UpdatePrice changes the price of an active ride. Rides in any other state are not modifiable.
func (r *Repository) UpdatePrice(ctx context.Context, id uuid.UUID, price float64) (*Ride, error) {
	query := `
		UPDATE rides r SET price = $2, updated_at = NOW()
		WHERE r.id = $1 AND r.status = 'active'
		RETURNING` + rideColumns

	ride, err := ScanRide(r.db.QueryRow(ctx, query, id, price))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotModifiable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ride price: %w", err)
	}
	return ride, nil
}

// ListByDriver returns a driver's rides, newest departure first
func (r *Repository) ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*Ride, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rides WHERE driver_id = $1`, driverID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count driver rides: %w", err)
	}

	query := `SELECT` + rideColumns + `
		FROM rides r
		WHERE r.driver_id = $1
		ORDER BY r.departure_time DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, driverID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list driver rides: %w", err)
	}
	defer rows.Close()

	rides := []*Ride{}
	for rows.Next() {
		ride, err := ScanRide(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ride: %w", err)
		}
		rides = append(rides, ride)
	}
	return rides, total, rows.Err()
}

// ListActive returns bookable rides matching the search, soonest departure first.
// The total counts every match, independent of the page.
func (r *Repository) ListActive(ctx context.Context, q SearchQuery) ([]*Listing, int64, error) {
	countQuery, countArgs := buildCountQuery(q)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	query, args := buildSearchQuery(q)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search rides: %w", err)
	}
	defer rows.Close()

	listings := []*Listing{}
	for rows.Next() {
		ride := &Ride{}
		l := &Listing{Ride: ride}
		dest := append(rideDest(ride),
			&l.Driver.UserID, &l.Driver.Name, &l.Driver.CarMake, &l.Driver.CarModel, &l.Driver.VehicleNumber,
			&l.Driver.Rating, &l.Driver.ReviewCount,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan ride listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, total, rows.Err()
}

// searchFrom joins bookable rides to drivers that are in good standing
const searchFrom = `
FROM rides r
JOIN users u ON u.id = r.driver_id AND u.is_banned = FALSE
JOIN drivers d ON d.user_id = r.driver_id AND d.is_banned = FALSE
LEFT JOIN LATERAL (
	SELECT ROUND(AVG(rv.rating)::numeric, 1)::float8 AS avg_rating, COUNT(*)::int AS review_count
	FROM reviews rv
	WHERE rv.subject_id = r.driver_id AND rv.direction = 'passenger_to_driver'
) rt ON TRUE`

const searchBase = `SELECT` + rideColumns + `,
	d.user_id, d.full_name, d.car_make, d.car_model, d.vehicle_number,
	rt.avg_rating, rt.review_count` + searchFrom

const searchCount = `SELECT COUNT(*)` + searchFrom

// buildSearchQuery constructs one page of the catalog search and its args
func buildSearchQuery(q SearchQuery) (string, []any) {
	where, args := searchConditions(q)
	args = append(args, q.Limit, q.Offset)

	query := searchBase + where +
		"\nORDER BY r.departure_time ASC, r.id" +
		fmt.Sprintf("\nLIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return query, args
}

// buildCountQuery counts every ride the search matches
func buildCountQuery(q SearchQuery) (string, []any) {
	where, args := searchConditions(q)
	return searchCount + where, args
}

// searchConditions builds the WHERE clause shared by the page and count queries
func searchConditions(q SearchQuery) (string, []any) {
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	f := q.Filters

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where := []string{
		"r.status = 'active'",
		"r.available_seats > 0",
		"r.departure_time >= " + arg(q.Now),
	}

	if s := strings.TrimSpace(f.From); s != "" {
		where = append(where, "r.from_location ILIKE "+arg(containsPattern(s)))
	}
	if s := strings.TrimSpace(f.To); s != "" {
		where = append(where, "r.to_location ILIKE "+arg(containsPattern(s)))
	}
	if f.MinPrice != nil {
		where = append(where, "r.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "r.price <= "+arg(*f.MaxPrice))
	}

	switch f.PriceBand {
	case PriceUnder500:
		where = append(where, "r.price < 500")
	case Price500To1000:
		where = append(where, "r.price >= 500 AND r.price <= 1000")
	case Price1000To2000:
		where = append(where, "r.price > 1000 AND r.price <= 2000")
	case PriceAbove2000:
		where = append(where, "r.price > 2000")
	}

	if f.MinRating != nil && *f.MinRating > 0 {
		where = append(where, "COALESCE(rt.avg_rating, 0) >= "+arg(*f.MinRating))
	}

	if lo, hi, ok := hourWindow(f.TimeWindow); ok {
		hour := "EXTRACT(HOUR FROM r.departure_time AT TIME ZONE " + arg(loc.String()) + ")"
		where = append(where, fmt.Sprintf("%s >= %d AND %s < %d", hour, lo, hour, hi))
	}
	switch f.TimeWindow {
	case WindowNextTwoHours:
		where = append(where, "r.departure_time <= "+arg(q.Now.Add(2*time.Hour)))
	case WindowToday, WindowTomorrow:
		start, end := dayBounds(q.Now.In(loc), f.TimeWindow == WindowTomorrow)
		where = append(where, "r.departure_time >= "+arg(start))
		where = append(where, "r.departure_time < "+arg(end))
	}

	return "\nWHERE " + strings.Join(where, " AND "), args
}

// hourWindow maps named windows to [lo, hi) local departure hours
func hourWindow(window string) (int, int, bool) {
	switch window {
	case WindowMorning:
		return 6, 12, true
	case WindowAfternoon:
		return 12, 18, true
	case WindowEvening:
		return 18, 24, true
	case WindowNight:
		return 0, 6, true
	}
	return 0, 0, false
}

// dayBounds returns the start and end of the local day containing now, or of the next day
func dayBounds(now time.Time, tomorrow bool) (time.Time, time.Time) {
	y, m, d := now.Date()
	if tomorrow {
		d++
	}
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
