package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/database"
	"github.com/stretchr/testify/require"
)

// AssertSeatLedger checks that a ride's available seats equal its total minus
// the seats held by confirmed bookings, and returns the available count
func AssertSeatLedger(t *testing.T, db database.DBTX, rideID uuid.UUID) int {
	t.Helper()

	var total, available, held int
	err := db.QueryRow(context.Background(),
		`SELECT r.total_seats, r.available_seats,
		        COALESCE((SELECT SUM(b.seats_booked) FROM bookings b
		                  WHERE b.ride_id = r.id AND b.status = 'confirmed'), 0)
		 FROM rides r WHERE r.id = $1`, rideID).Scan(&total, &available, &held)
	require.NoError(t, err)

	require.GreaterOrEqual(t, available, 0)
	require.LessOrEqual(t, available, total)
	require.Equal(t, total-available, held, "available seats drifted from confirmed bookings")
	return available
}

// WaitForLockWaiters blocks until n sessions of the test database are waiting on a row lock
func WaitForLockWaiters(t *testing.T, db database.DBTX, n int) {
	t.Helper()

	require.Eventually(t, func() bool {
		var waiting int
		err := db.QueryRow(context.Background(),
			`SELECT COUNT(*) FROM pg_stat_activity
			 WHERE datname = current_database() AND wait_event_type = 'Lock'`).Scan(&waiting)
		return err == nil && waiting >= n
	}, 5*time.Second, 10*time.Millisecond, "expected %d session(s) waiting on a lock", n)
}
