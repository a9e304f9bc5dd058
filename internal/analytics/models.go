package analytics

import "time"

// UserCounts splits non-admin accounts by ban state
type UserCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Banned int `json:"banned"`
}

// DriverCounts splits driver profiles by review state
type DriverCounts struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Pending  int `json:"pending"`
	Banned   int `json:"banned"`
}

// RideCounts splits rides by lifecycle status
type RideCounts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// Revenue is the value of confirmed bookings on completed rides
type Revenue struct {
	Total        float64 `json:"total"`
	CurrentMonth float64 `json:"current_month"`
	Currency     string  `json:"currency"`
}

// DashboardMetrics is the admin overview of the platform
type DashboardMetrics struct {
	Users       UserCounts   `json:"users"`
	Drivers     DriverCounts `json:"drivers"`
	Rides       RideCounts   `json:"rides"`
	Revenue     Revenue      `json:"revenue"`
	MonthStart  time.Time    `json:"month_start"`
	GeneratedAt time.Time    `json:"generated_at"`
}
