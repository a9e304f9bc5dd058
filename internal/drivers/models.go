package drivers

import (
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/storage"
)

var (
	ErrDriverNotFound  = errors.New("driver profile not found")
	ErrProfileExists   = errors.New("driver profile already exists")
	ErrAadhaarTaken    = errors.New("aadhaar number already registered")
	ErrAlreadyVerified = errors.New("verified drivers cannot be rejected")
)

// Driver is a driver's verification profile
type Driver struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	FullName          string    `json:"full_name"`
	PhotographURL     string    `json:"photograph_url"`
	PhotographKey     string    `json:"-"`
	PrimaryPhone      string    `json:"primary_phone"`
	SecondaryPhone    string    `json:"secondary_phone,omitempty"`
	Address           string    `json:"address"`
	AadhaarNumber     string    `json:"aadhaar_number"`
	DrivingLicenseURL string    `json:"driving_license_url"`
	DrivingLicenseKey string    `json:"-"`
	VehicleNumber     string    `json:"vehicle_number"`
	CarMake           string    `json:"car_make"`
	CarModel          string    `json:"car_model"`
	IsVerified        bool      `json:"is_verified"`
	IsBanned          bool      `json:"is_banned"`
	CompletedRides    int       `json:"completed_rides"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Status is the admin-facing state of a profile
func (d *Driver) Status() StatusFilter {
	switch {
	case d.IsBanned:
		return StatusBanned
	case d.IsVerified:
		return StatusVerified
	}
	return StatusPending
}

// StatusFilter selects drivers in the admin listing
type StatusFilter string

const (
	StatusAll      StatusFilter = ""
	StatusPending  StatusFilter = "pending"
	StatusVerified StatusFilter = "verified"
	StatusBanned   StatusFilter = "banned"
)

// ProfileRequest is the multipart form a driver registers with
type ProfileRequest struct {
	FullName       string `form:"full_name" json:"full_name" validate:"required,min=2,max=100"`
	PrimaryPhone   string `form:"primary_phone" json:"primary_phone" validate:"required,phone"`
	SecondaryPhone string `form:"secondary_phone" json:"secondary_phone" validate:"omitempty,phone"`
	Address        string `form:"address" json:"address" validate:"required,max=500"`
	AadhaarNumber  string `form:"aadhaar_number" json:"aadhaar_number" validate:"required,len=12,numeric"`
	VehicleNumber  string `form:"vehicle_number" json:"vehicle_number" validate:"required,max=20"`
	CarMake        string `form:"car_make" json:"car_make" validate:"required,max=50"`
	CarModel       string `form:"car_model" json:"car_model" validate:"required,max=50"`
}

// UpdateProfileRequest carries the fields a driver may change; empty fields are kept
type UpdateProfileRequest struct {
	FullName       *string `form:"full_name" json:"full_name" validate:"omitempty,min=2,max=100"`
	PrimaryPhone   *string `form:"primary_phone" json:"primary_phone" validate:"omitempty,phone"`
	SecondaryPhone *string `form:"secondary_phone" json:"secondary_phone" validate:"omitempty,phone"`
	Address        *string `form:"address" json:"address" validate:"omitempty,max=500"`
	VehicleNumber  *string `form:"vehicle_number" json:"vehicle_number" validate:"omitempty,max=20"`
	CarMake        *string `form:"car_make" json:"car_make" validate:"omitempty,max=50"`
	CarModel       *string `form:"car_model" json:"car_model" validate:"omitempty,max=50"`
}

// Document is an uploaded file on its way to storage
type Document struct {
	Type        storage.DocumentType
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// DocumentLink is a time-limited download link for a stored document
type DocumentLink struct {
	Type      storage.DocumentType `json:"type"`
	URL       string               `json:"url"`
	ExpiresAt time.Time            `json:"expires_at"`
}
