package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/seatshare/internal/ledger"
	"github.com/richxcame/seatshare/internal/rides"
	"github.com/richxcame/seatshare/pkg/database"
)

const bookingColumns = `
	b.id, b.user_id, b.ride_id, b.seats_booked, b.total_price::float8,
	b.status, b.version, b.cancelled_at, b.created_at, b.updated_at`

func bookingDest(b *Booking) []any {
	return []any{
		&b.ID, &b.PassengerID, &b.RideID, &b.SeatsBooked, &b.TotalPrice,
		&b.Status, &b.Version, &b.CancelledAt, &b.CreatedAt, &b.UpdatedAt,
	}
}

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	if err := row.Scan(bookingDest(b)...); err != nil {
		return nil, err
	}
	return b, nil
}

// Repository handles booking data access
type Repository struct {
	pool database.Pool
}

// NewRepository creates a new bookings repository
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

// InTx runs fn in a database transaction
func (r *Repository) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txStore{db: tx})
	})
}

// GetBooking returns a booking by ID
func (r *Repository) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return getBooking(ctx, r.pool, bookingID)
}

// GetRide returns a ride by ID
func (r *Repository) GetRide(ctx context.Context, rideID uuid.UUID) (*rides.Ride, error) {
	return getRide(ctx, r.pool, rideQuery, rideID)
}

// ListPassengerBookings returns the passenger's bookings, newest first, with ride and driver details
func (r *Repository) ListPassengerBookings(ctx context.Context, passengerID uuid.UUID, limit, offset int) ([]*BookingView, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, passengerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query := `
		SELECT` + bookingColumns + `,
			r.from_location, r.to_location, r.departure_time, r.price::float8, r.status,
			COALESCE(d.full_name, u.name), COALESCE(d.primary_phone, u.phone),
			COALESCE(d.vehicle_number, ''), COALESCE(d.car_make, ''), COALESCE(d.car_model, '')
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		JOIN users u ON u.id = r.driver_id
		LEFT JOIN drivers d ON d.user_id = r.driver_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, passengerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	views := []*BookingView{}
	for rows.Next() {
		v := &BookingView{Booking: &Booking{}}
		dest := append(bookingDest(v.Booking),
			&v.Ride.FromLocation, &v.Ride.ToLocation, &v.Ride.DepartureTime, &v.Ride.Price, &v.Ride.Status,
			&v.Ride.DriverName, &v.Ride.DriverPhone,
			&v.Ride.VehicleNumber, &v.Ride.CarMake, &v.Ride.CarModel,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		views = append(views, v)
	}
	return views, total, rows.Err()
}

// ListRideBookings returns the confirmed bookings of a ride with passenger contact details
func (r *Repository) ListRideBookings(ctx context.Context, rideID uuid.UUID) ([]*RideBooking, error) {
	query := `
		SELECT b.id, b.user_id, u.name, u.phone, b.seats_booked, b.total_price::float8, b.created_at
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.ride_id = $1 AND b.status = 'confirmed'
		ORDER BY b.created_at
	`

	rows, err := r.pool.Query(ctx, query, rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ride bookings: %w", err)
	}
	defer rows.Close()

	list := []*RideBooking{}
	for rows.Next() {
		rb := &RideBooking{}
		if err := rows.Scan(&rb.BookingID, &rb.PassengerID, &rb.PassengerName, &rb.PassengerPhone,
			&rb.SeatsBooked, &rb.TotalPrice, &rb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ride booking: %w", err)
		}
		list = append(list, rb)
	}
	return list, rows.Err()
}

func getBooking(ctx context.Context, db database.DBTX, bookingID uuid.UUID) (*Booking, error) {
	b, err := scanBooking(db.QueryRow(ctx, `SELECT`+bookingColumns+` FROM bookings b WHERE b.id = $1`, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

const rideQuery = `SELECT` + rides.Columns + ` FROM rides r WHERE r.id = $1`

// lockedRideQuery holds the ride row until the transaction ends, so status,
// price and departure checks stay true through the ledger update
const lockedRideQuery = rideQuery + ` FOR UPDATE`

func getRide(ctx context.Context, db database.DBTX, query string, rideID uuid.UUID) (*rides.Ride, error) {
	ride, err := rides.ScanRide(db.QueryRow(ctx, query, rideID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, rides.ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return ride, nil
}

// txStore runs lifecycle statements on one transaction
type txStore struct {
	db database.DBTX
}

func (s *txStore) GetRide(ctx context.Context, rideID uuid.UUID) (*rides.Ride, error) {
	return getRide(ctx, s.db, lockedRideQuery, rideID)
}

func (s *txStore) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return getBooking(ctx, s.db, bookingID)
}

func (s *txStore) InsertBooking(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, ride_id, seats_booked, total_price, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query,
		b.ID, b.PassengerID, b.RideID, b.SeatsBooked, b.TotalPrice, string(b.Status), b.Version,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (s *txStore) UpdateBookingSeats(ctx context.Context, b *Booking, expectedVersion int) error {
	query := `
		UPDATE bookings
		SET seats_booked = $2, total_price = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $4 AND status = 'confirmed'
		RETURNING version, updated_at
	`

	err := s.db.QueryRow(ctx, query, b.ID, b.SeatsBooked, b.TotalPrice, expectedVersion).Scan(&b.Version, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrConcurrencyConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

func (s *txStore) CancelBooking(ctx context.Context, b *Booking, expectedVersion int) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = NOW(), version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND status = 'confirmed'
		RETURNING status, version, cancelled_at, updated_at
	`

	err := s.db.QueryRow(ctx, query, b.ID, expectedVersion).Scan(&b.Status, &b.Version, &b.CancelledAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrConcurrencyConflict
	}
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	return nil
}

func (s *txStore) TransitionRide(ctx context.Context, rideID uuid.UUID, to rides.Status) (*rides.Ride, error) {
	stamp := "completed_at"
	if to == rides.StatusCancelled {
		stamp = "cancelled_at"
	}

	query := `
		UPDATE rides r
		SET status = $2, ` + stamp + ` = NOW(), updated_at = NOW()
		WHERE r.id = $1 AND r.status = 'active'
		RETURNING` + rides.Columns

	ride, err := rides.ScanRide(s.db.QueryRow(ctx, query, rideID, string(to)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConcurrencyConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ride status: %w", err)
	}
	return ride, nil
}

func (s *txStore) CancelRideBookings(ctx context.Context, rideID uuid.UUID) (int, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = NOW(), version = version + 1, updated_at = NOW()
		WHERE ride_id = $1 AND status = 'confirmed'`, rideID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel ride bookings: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *txStore) IncrementCompletedRides(ctx context.Context, driverID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE drivers SET completed_rides = completed_rides + 1, updated_at = NOW() WHERE user_id = $1`, driverID)
	if err != nil {
		return fmt.Errorf("failed to count completed ride: %w", err)
	}
	return nil
}

func (s *txStore) Reserve(ctx context.Context, rideID uuid.UUID, count int) error {
	return ledger.Reserve(ctx, s.db, rideID, count)
}

func (s *txStore) Release(ctx context.Context, rideID uuid.UUID, count int) error {
	return ledger.Release(ctx, s.db, rideID, count)
}

func (s *txStore) Adjust(ctx context.Context, rideID uuid.UUID, delta int) error {
	return ledger.Adjust(ctx, s.db, rideID, delta)
}
