package rides

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is a ride's lifecycle state
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var (
	ErrRideNotFound      = errors.New("ride not found")
	ErrNotModifiable     = errors.New("ride is not modifiable")
	ErrInvalidSeats      = errors.New("total seats must be at least 1")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrDepartureInPast   = errors.New("departure must be in the future")
	ErrMissingLocation   = errors.New("origin and destination are required")
	ErrDriverNotVerified = errors.New("driver profile is not verified")
)

// Ride is a driver's offer of seats on a trip
type Ride struct {
	ID             uuid.UUID  `json:"id"`
	DriverID       uuid.UUID  `json:"driver_id"`
	FromLocation   string     `json:"from_location"`
	ToLocation     string     `json:"to_location"`
	Price          float64    `json:"price"`
	TotalSeats     int        `json:"total_seats"`
	AvailableSeats int        `json:"available_seats"`
	DepartureTime  time.Time  `json:"departure_time"`
	Status         Status     `json:"status"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewRide validates the offer and returns an Active ride with every seat available
func NewRide(driverID uuid.UUID, from, to string, price float64, seats int, departure, now time.Time) (*Ride, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	switch {
	case from == "" || to == "":
		return nil, ErrMissingLocation
	case seats < 1:
		return nil, ErrInvalidSeats
	case price < 0 || math.IsNaN(price) || math.IsInf(price, 0):
		return nil, ErrInvalidPrice
	case !departure.After(now):
		return nil, ErrDepartureInPast
	}

	return &Ride{
		ID:             uuid.New(),
		DriverID:       driverID,
		FromLocation:   from,
		ToLocation:     to,
		Price:          RoundMoney(price),
		TotalSeats:     seats,
		AvailableSeats: seats,
		DepartureTime:  departure,
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsRideCompleted is the legacy tri-state completion flag: nil while active
func (r *Ride) IsRideCompleted() *bool {
	switch r.Status {
	case StatusCompleted:
		v := true
		return &v
	case StatusCancelled:
		v := false
		return &v
	}
	return nil
}

// SeatsConsumed returns the number of seats held by confirmed bookings
func (r *Ride) SeatsConsumed() int {
	return r.TotalSeats - r.AvailableSeats
}

// MarshalJSON adds is_ride_completed to the ride payload
func (r Ride) MarshalJSON() ([]byte, error) {
	type plain Ride
	return json.Marshal(struct {
		plain
		IsRideCompleted *bool `json:"is_ride_completed"`
	}{plain(r), r.IsRideCompleted()})
}

// RoundMoney rounds an amount to two decimals
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// DriverSummary is the public view of a ride's driver in search results
type DriverSummary struct {
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	CarMake       string    `json:"car_make"`
	CarModel      string    `json:"car_model"`
	VehicleNumber string    `json:"vehicle_number"`
	// Rating is nil for drivers nobody has reviewed yet
	Rating      *float64 `json:"rating"`
	ReviewCount int      `json:"review_count"`
}

// Listing is a searchable ride with its driver
type Listing struct {
	Ride   *Ride         `json:"ride"`
	Driver DriverSummary `json:"driver"`
}

// CreateRideRequest is the payload drivers publish a ride with
type CreateRideRequest struct {
	FromLocation  string    `json:"from_location" binding:"required" validate:"required,max=200"`
	ToLocation    string    `json:"to_location" binding:"required" validate:"required,max=200"`
	Price         *float64  `json:"price" binding:"required" validate:"required,gte=0,lte=1000000"`
	TotalSeats    int       `json:"total_seats" binding:"required" validate:"required,min=1,max=50"`
	DepartureTime time.Time `json:"departure_time" validate:"required,future"`
}

// UpdatePriceRequest changes the per-seat price of an active ride
type UpdatePriceRequest struct {
	Price *float64 `json:"price" binding:"required" validate:"required,gte=0,lte=1000000"`
}

// Named price bands offered by the search page
const (
	PriceUnder500   = "under-500"
	Price500To1000  = "500-1000"
	Price1000To2000 = "1000-2000"
	PriceAbove2000  = "above-2000"
)

// Departure time windows offered by the search page
const (
	WindowMorning      = "morning"
	WindowAfternoon    = "afternoon"
	WindowEvening      = "evening"
	WindowNight        = "night"
	WindowNextTwoHours = "next-2-hours"
	WindowToday        = "today"
	WindowTomorrow     = "tomorrow"
)

// SearchFilters narrows the active ride catalog
type SearchFilters struct {
	From       string   `form:"from" json:"from" validate:"max=200"`
	To         string   `form:"to" json:"to" validate:"max=200"`
	MinPrice   *float64 `form:"min_price" json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice   *float64 `form:"max_price" json:"max_price" validate:"omitempty,gte=0"`
	PriceBand  string   `form:"price" json:"price" validate:"price_band"`
	MinRating  *float64 `form:"min_rating" json:"min_rating" validate:"omitempty,gte=0,lte=5"`
	TimeWindow string   `form:"time" json:"time" validate:"time_window"`
}
