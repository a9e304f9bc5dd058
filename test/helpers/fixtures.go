package helpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/database"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/stretchr/testify/require"
)

// TruncateTables empties every table, children first
func TruncateTables(t *testing.T, db database.DBTX) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`TRUNCATE sos_alerts, reviews, bookings, rides, drivers, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

// CreateTestUser inserts an account with role and returns its principal.
// Drivers also get a verified profile so they can publish and complete rides.
func CreateTestUser(t *testing.T, db database.DBTX, role models.Role) models.Principal {
	t.Helper()
	ctx := context.Background()

	id := uuid.New()
	phone := fmt.Sprintf("+91%010d", uint64(id.ID())%10000000000)
	_, err := db.Exec(ctx,
		`INSERT INTO users (id, phone, name, password_hash, role) VALUES ($1, $2, $3, $4, $5)`,
		id, phone, "Test "+string(role), "not-a-real-hash", string(role))
	require.NoError(t, err)

	p := models.Principal{UserID: id, Role: role}
	if role == models.RoleDriver {
		_, err = db.Exec(ctx,
			`INSERT INTO drivers (id, user_id, full_name, primary_phone, address, aadhaar_number,
			                      vehicle_number, car_make, car_model, is_verified)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)`,
			uuid.New(), id, "Test Driver", phone, "MG Road, Bengaluru",
			fmt.Sprintf("%012d", id.ID()), "KA01AB1234", "Maruti", "Dzire")
		require.NoError(t, err)
		p.DriverVerified = true
	}
	return p
}

// Price returns a pointer to v for request payloads
func Price(v float64) *float64 {
	return &v
}

// Tomorrow is a departure time safely in the future
func Tomorrow() time.Time {
	return time.Now().Add(24 * time.Hour).Truncate(time.Minute)
}
