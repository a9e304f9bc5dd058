package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an account's role
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RolePassenger, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// User is an account
type User struct {
	ID           uuid.UUID `json:"id"`
	Phone        string    `json:"phone"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsBanned     bool      `json:"is_banned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the sign-up payload
type RegisterRequest struct {
	Phone    string `json:"phone" binding:"required" validate:"required,phone"`
	Name     string `json:"name" binding:"required" validate:"required,min=2,max=100"`
	Password string `json:"password" binding:"required" validate:"required,min=8,max=72"`
	Role     Role   `json:"role" binding:"required" validate:"required,user_role"`
}

// LoginRequest is the sign-in payload
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required" validate:"required"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
