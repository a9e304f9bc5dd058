package earnings

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/internal/rides"
)

// RatingSummary is an average rating over Count reviews. Average is nil when
// nobody has rated yet, which is different from a low rating.
type RatingSummary struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// Rated reports whether at least one review exists
func (r RatingSummary) Rated() bool {
	return r.Average != nil
}

// RideEarning is one ride's contribution to a driver's earnings
type RideEarning struct {
	RideID        uuid.UUID    `json:"ride_id"`
	FromLocation  string       `json:"from_location"`
	ToLocation    string       `json:"to_location"`
	DepartureTime time.Time    `json:"departure_time"`
	Status        rides.Status `json:"status"`
	SeatsBooked   int          `json:"seats_booked"`
	Earnings      float64      `json:"earnings"`
}

// RideCounts tallies a driver's rides by status
type RideCounts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// Summary is the driver dashboard block
type Summary struct {
	DriverID      uuid.UUID     `json:"driver_id"`
	TotalEarnings float64       `json:"total_earnings"`
	Currency      string        `json:"currency"`
	Rating        RatingSummary `json:"rating"`
	Rides         RideCounts    `json:"rides"`
}
