package bookings

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/internal/ledger"
	"github.com/richxcame/seatshare/internal/rides"
)

// Status is a booking's lifecycle state
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrNotModifiable       = errors.New("booking can no longer be changed")
	ErrConcurrencyConflict = errors.New("booking was changed concurrently")
	ErrRideDeparted        = errors.New("ride has already departed")
	ErrNotOwner            = errors.New("booking belongs to another user")
)

// Booking is a passenger's claim on seats of one ride
type Booking struct {
	ID          uuid.UUID  `json:"id"`
	PassengerID uuid.UUID  `json:"user_id"`
	RideID      uuid.UUID  `json:"ride_id"`
	SeatsBooked int        `json:"seats_booked"`
	TotalPrice  float64    `json:"total_price"`
	Status      Status     `json:"status"`
	Version     int        `json:"version"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewBooking validates a request for seats on ride and returns a Confirmed booking.
// It does not touch the ledger.
func NewBooking(passengerID uuid.UUID, ride *rides.Ride, seats int, now time.Time) (*Booking, error) {
	switch {
	case seats < 1:
		return nil, ledger.ErrInvalidSeatCount
	case ride.Status != rides.StatusActive:
		return nil, ledger.ErrRideNotActive
	case !ride.DepartureTime.After(now):
		return nil, ErrRideDeparted
	case seats > ride.TotalSeats:
		return nil, ledger.ErrInsufficientSeats
	}

	return &Booking{
		ID:          uuid.New(),
		PassengerID: passengerID,
		RideID:      ride.ID,
		SeatsBooked: seats,
		TotalPrice:  Fare(seats, ride.Price),
		Status:      StatusConfirmed,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Fare is the price of seats at the per-seat price
func Fare(seats int, price float64) float64 {
	return rides.RoundMoney(float64(seats) * price)
}

// Cancelled reports whether the booking has been cancelled
func (b *Booking) Cancelled() bool {
	return b.Status == StatusCancelled
}

// RideSummary is the part of a ride shown next to a passenger's booking
type RideSummary struct {
	FromLocation  string       `json:"from_location"`
	ToLocation    string       `json:"to_location"`
	DepartureTime time.Time    `json:"departure_time"`
	Price         float64      `json:"price"`
	Status        rides.Status `json:"status"`
	DriverName    string       `json:"driver_name"`
	DriverPhone   string       `json:"driver_phone"`
	VehicleNumber string       `json:"vehicle_number"`
	CarMake       string       `json:"car_make"`
	CarModel      string       `json:"car_model"`
}

// BookingView is a booking with its ride, as listed for the passenger
type BookingView struct {
	Booking *Booking    `json:"booking"`
	Ride    RideSummary `json:"ride"`
}

// RideBooking is a confirmed booking as the ride's driver sees it
type RideBooking struct {
	BookingID      uuid.UUID `json:"booking_id"`
	PassengerID    uuid.UUID `json:"passenger_id"`
	PassengerName  string    `json:"passenger_name"`
	PassengerPhone string    `json:"passenger_phone"`
	SeatsBooked    int       `json:"seats_booked"`
	TotalPrice     float64   `json:"total_price"`
	CreatedAt      time.Time `json:"created_at"`
}

// CancelRideResult reports a ride cancellation and how many bookings it cancelled
type CancelRideResult struct {
	Ride              *rides.Ride `json:"ride"`
	CancelledBookings int         `json:"cancelled_bookings"`
}

// CreateBookingRequest is the payload to book seats
type CreateBookingRequest struct {
	RideID uuid.UUID `json:"ride_id" binding:"required" validate:"required"`
	Seats  int       `json:"seats" binding:"required" validate:"required,min=1,max=50"`
}

// EditSeatsRequest changes the number of seats on a booking
type EditSeatsRequest struct {
	Seats int `json:"seats" binding:"required" validate:"required,min=1,max=50"`
}
