package drivers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var driverColumnNames = []string{
	"id", "user_id", "full_name", "photograph_url", "photograph_key", "primary_phone", "secondary_phone",
	"address", "aadhaar_number", "driving_license_url", "driving_license_key", "vehicle_number",
	"car_make", "car_model", "is_verified", "is_banned", "completed_rides", "created_at", "updated_at",
}

func TestRepository_Create_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"drivers_aadhaar_number_key", ErrAadhaarTaken},
		{"drivers_user_id_key", ErrProfileExists},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			mock := newMock(t)
			repo := NewRepository(mock)

			mock.ExpectQuery("INSERT INTO drivers").
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &Driver{ID: uuid.New(), UserID: uuid.New()})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRepository_GetByUserID(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	id, userID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM drivers WHERE user_id").WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(driverColumnNames).AddRow(
			id, userID, "Ravi Kumar", "https://cdn.test/p.jpg", "p.jpg", "9876543210", "",
			"Pune", "123412341234", "https://cdn.test/dl.pdf", "dl.pdf", "MH12AB1234",
			"Maruti", "Swift", true, false, 7, now, now,
		))

	d, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, "p.jpg", d.PhotographKey)
	assert.Equal(t, 7, d.CompletedRides)
	assert.Equal(t, StatusVerified, d.Status())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	id := uuid.New()

	mock.ExpectQuery("FROM drivers WHERE id").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestRepository_List_PendingFilter(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM drivers WHERE is_verified = FALSE AND is_banned = FALSE`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("WHERE is_verified = FALSE AND is_banned = FALSE ORDER BY created_at DESC").WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(driverColumnNames))

	drivers, total, err := repo.List(context.Background(), StatusPending, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, drivers)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetBanned_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE drivers SET is_banned").WithArgs(id, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetBanned(context.Background(), id, true)
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestRepository_DeleteUnverified_AlreadyVerified(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	id := uuid.New()
	now := time.Now()

	mock.ExpectExec("DELETE FROM drivers").WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery("FROM drivers WHERE id").WithArgs(id).
		WillReturnRows(pgxmock.NewRows(driverColumnNames).AddRow(
			id, uuid.New(), "Ravi Kumar", "", "", "9876543210", "",
			"Pune", "123412341234", "", "", "MH12AB1234",
			"Maruti", "Swift", true, false, 0, now, now,
		))

	err := repo.DeleteUnverified(context.Background(), id)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}
