package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/seatshare/pkg/database"
)

// Repository handles review data access
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new reviews repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// GetParticipants loads the passenger, driver and statuses behind a booking
func (r *Repository) GetParticipants(ctx context.Context, bookingID uuid.UUID) (*Participants, error) {
	query := `
		SELECT b.id, b.ride_id, b.user_id, r.driver_id, b.status, r.status
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		WHERE b.id = $1
	`

	p := &Participants{}
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&p.BookingID, &p.RideID, &p.PassengerID, &p.DriverID, &p.BookingStatus, &p.RideStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking participants: %w", err)
	}
	return p, nil
}

// Create inserts a review. A second review of the same booking in the same
// direction returns ErrDuplicateReview.
func (r *Repository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (id, booking_id, ride_id, author_id, subject_id, direction, rating, review_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		review.ID, review.BookingID, review.RideID, review.AuthorID, review.SubjectID,
		string(review.Direction), review.Rating, review.Text,
	).Scan(&review.CreatedAt)

	switch {
	case database.IsUniqueViolation(err, "reviews_booking_direction_key"):
		return ErrDuplicateReview
	case err != nil:
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListReceived returns reviews about subjectID, newest first
func (r *Repository) ListReceived(ctx context.Context, subjectID uuid.UUID, direction Direction, limit, offset int) ([]*ReceivedReview, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE subject_id = $1 AND direction = $2`,
		subjectID, string(direction),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := `
		SELECT rv.id, rv.booking_id, rv.ride_id, rv.author_id, rv.subject_id, rv.direction,
			rv.rating, rv.review_text, rv.created_at, u.name
		FROM reviews rv
		JOIN users u ON u.id = rv.author_id
		WHERE rv.subject_id = $1 AND rv.direction = $2
		ORDER BY rv.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, subjectID, string(direction), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	list := []*ReceivedReview{}
	for rows.Next() {
		rv := &ReceivedReview{}
		if err := rows.Scan(
			&rv.ID, &rv.BookingID, &rv.RideID, &rv.AuthorID, &rv.SubjectID, &rv.Direction,
			&rv.Rating, &rv.Text, &rv.CreatedAt, &rv.AuthorName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		list = append(list, rv)
	}
	return list, total, rows.Err()
}
