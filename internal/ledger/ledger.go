// Package ledger tracks seat consumption per ride. Every operation is a single
// conditional statement, so availability can never go negative or exceed capacity
// no matter how callers interleave. Callers pass the query surface, which lets
// ledger updates join a larger transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/seatshare/pkg/database"
)

var (
	ErrRideNotFound      = errors.New("ride not found")
	ErrRideNotActive     = errors.New("ride is not active")
	ErrInsufficientSeats = errors.New("not enough seats available")
	ErrInvalidSeatCount  = errors.New("seat count must be at least 1")
)

// Snapshot is a ride's seat state at one point in time
type Snapshot struct {
	RideID         uuid.UUID `json:"ride_id"`
	Status         string    `json:"status"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
}

// Consumed returns the seats held by confirmed bookings
func (s Snapshot) Consumed() int {
	return s.TotalSeats - s.AvailableSeats
}

const reserveQuery = `
	UPDATE rides
	SET available_seats = available_seats - $2, updated_at = NOW()
	WHERE id = $1 AND status = 'active' AND available_seats >= $2`

const releaseQuery = `
	UPDATE rides
	SET available_seats = LEAST(total_seats, available_seats + $2), updated_at = NOW()
	WHERE id = $1 AND status = 'active'`

const snapshotQuery = `
	SELECT id, status, total_seats, available_seats
	FROM rides
	WHERE id = $1`

// Reserve takes count seats from the ride. It fails without side effects when the
// ride is missing, not active, or has fewer than count seats left.
func Reserve(ctx context.Context, q database.DBTX, rideID uuid.UUID, count int) error {
	if count < 1 {
		return ErrInvalidSeatCount
	}

	tag, err := q.Exec(ctx, reserveQuery, rideID, count)
	if err != nil {
		return fmt.Errorf("reserve seats: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	snap, err := Available(ctx, q, rideID)
	if err != nil {
		return err
	}
	if snap.Status != "active" {
		return ErrRideNotActive
	}
	return ErrInsufficientSeats
}

// Release returns count seats to an active ride, never exceeding its capacity.
// Seats of a completed or cancelled ride stay where they are.
func Release(ctx context.Context, q database.DBTX, rideID uuid.UUID, count int) error {
	if count < 1 {
		return ErrInvalidSeatCount
	}

	tag, err := q.Exec(ctx, releaseQuery, rideID, count)
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := Available(ctx, q, rideID); err != nil {
		return err
	}
	return ErrRideNotActive
}

// Adjust reserves delta seats when positive and releases -delta when negative
func Adjust(ctx context.Context, q database.DBTX, rideID uuid.UUID, delta int) error {
	switch {
	case delta > 0:
		return Reserve(ctx, q, rideID, delta)
	case delta < 0:
		return Release(ctx, q, rideID, -delta)
	}
	return nil
}

// Available reads the ride's current seat state
func Available(ctx context.Context, q database.DBTX, rideID uuid.UUID) (*Snapshot, error) {
	snap := &Snapshot{}
	err := q.QueryRow(ctx, snapshotQuery, rideID).Scan(&snap.RideID, &snap.Status, &snap.TotalSeats, &snap.AvailableSeats)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read seat state: %w", err)
	}
	return snap, nil
}
