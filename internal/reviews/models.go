package reviews

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Direction says who reviewed whom
type Direction string

const (
	PassengerToDriver Direction = "passenger_to_driver"
	DriverToPassenger Direction = "driver_to_passenger"
)

var (
	ErrDuplicateReview  = errors.New("booking already reviewed in this direction")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrRideNotCompleted = errors.New("ride is not completed")
	ErrBookingCancelled = errors.New("booking was cancelled")
	ErrNotParticipant   = errors.New("user did not take part in this booking")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
)

// Review is one rating left after a completed ride
type Review struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	RideID    uuid.UUID `json:"ride_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	SubjectID uuid.UUID `json:"subject_id"`
	Direction Direction `json:"direction"`
	Rating    int       `json:"rating"`
	Text      string    `json:"review_text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReview builds the review authorID leaves on the booking described by parts.
// The author must be the side of the booking that dir starts from, the booking
// must still be confirmed and its ride completed.
func NewReview(parts *Participants, dir Direction, authorID uuid.UUID, rating int, text string, now time.Time) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	author, subject := parts.PassengerID, parts.DriverID
	if dir == DriverToPassenger {
		author, subject = parts.DriverID, parts.PassengerID
	}
	if authorID != author {
		return nil, ErrNotParticipant
	}
	if parts.BookingStatus != "confirmed" {
		return nil, ErrBookingCancelled
	}
	if parts.RideStatus != "completed" {
		return nil, ErrRideNotCompleted
	}

	return &Review{
		ID:        uuid.New(),
		BookingID: parts.BookingID,
		RideID:    parts.RideID,
		AuthorID:  author,
		SubjectID: subject,
		Direction: dir,
		Rating:    rating,
		Text:      text,
		CreatedAt: now,
	}, nil
}

// ReceivedReview is a review as listed on its subject's profile
type ReceivedReview struct {
	Review
	AuthorName string `json:"author_name"`
}

// Participants identifies the two sides of a booking and the state of its ride
type Participants struct {
	BookingID     uuid.UUID
	RideID        uuid.UUID
	PassengerID   uuid.UUID
	DriverID      uuid.UUID
	BookingStatus string
	RideStatus    string
}

// CreateReviewRequest is the payload to review the other side of a booking
type CreateReviewRequest struct {
	Rating int    `json:"rating" binding:"required" validate:"required,min=1,max=5"`
	Text   string `json:"review_text" validate:"max=1000"`
}
