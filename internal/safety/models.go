package safety

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/models"
)

// EmergencyStatus is the state of an SOS alert
type EmergencyStatus string

const (
	EmergencyStatusActive   EmergencyStatus = "active"
	EmergencyStatusResolved EmergencyStatus = "resolved"
)

var (
	ErrAlertNotFound = errors.New("sos alert not found")
	ErrUnknownRide   = errors.New("referenced ride does not exist")
)

// EmergencyAlert is an SOS raised by a driver or passenger
type EmergencyAlert struct {
	ID         uuid.UUID       `json:"id"`
	RaisedBy   uuid.UUID       `json:"raised_by"`
	Role       models.Role     `json:"role"`
	RideID     *uuid.UUID      `json:"ride_id,omitempty"`
	Location   string          `json:"location"`
	Message    string          `json:"message"`
	Status     EmergencyStatus `json:"status"`
	ResolvedBy *uuid.UUID      `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Active reports whether the alert still needs attention
func (a *EmergencyAlert) Active() bool {
	return a.Status == EmergencyStatusActive
}

// RaiseSOSRequest is the payload of an SOS
type RaiseSOSRequest struct {
	Location string     `json:"location" binding:"required" validate:"required,max=300"`
	Message  string     `json:"message" validate:"max=1000"`
	RideID   *uuid.UUID `json:"ride_id"`
}
