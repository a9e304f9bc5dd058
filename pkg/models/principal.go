package models

import "github.com/google/uuid"

// Principal is the authenticated caller of a service operation, loaded fresh
// from the database on every request.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	// Banned is true when the user account or the driver profile is banned
	Banned bool
	// DriverVerified is true when the caller has a verified driver profile
	DriverVerified bool
}

func (p Principal) IsAdmin() bool     { return p.Role == RoleAdmin }
func (p Principal) IsDriver() bool    { return p.Role == RoleDriver }
func (p Principal) IsPassenger() bool { return p.Role == RolePassenger }

// CanActOn reports whether p may act on a resource owned by ownerID
func (p Principal) CanActOn(ownerID uuid.UUID) bool {
	return p.IsAdmin() || p.UserID == ownerID
}
