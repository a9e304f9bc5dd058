package bookings

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/internal/ledger"
	"github.com/richxcame/seatshare/internal/rides"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCache implements CacheInvalidator for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateDriver(ctx context.Context, driverID uuid.UUID) {
	m.Called(ctx, driverID)
}

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestService(store RepositoryInterface, cache CacheInvalidator, config ServiceConfig) *Service {
	svc := NewService(store, cache, config)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func passenger() models.Principal {
	return models.Principal{UserID: uuid.New(), Role: models.RolePassenger}
}

func admin() models.Principal {
	return models.Principal{UserID: uuid.New(), Role: models.RoleAdmin}
}

func seedRide(store *memStore, seats int, price float64) *rides.Ride {
	ride := &rides.Ride{
		ID:             uuid.New(),
		DriverID:       uuid.New(),
		FromLocation:   "Pune",
		ToLocation:     "Mumbai",
		Price:          price,
		TotalSeats:     seats,
		AvailableSeats: seats,
		DepartureTime:  fixedNow.Add(24 * time.Hour),
		Status:         rides.StatusActive,
	}
	store.addRide(ride)
	return ride
}

func driverOf(ride *rides.Ride) models.Principal {
	return models.Principal{UserID: ride.DriverID, Role: models.RoleDriver, DriverVerified: true}
}

func assertAppError(t *testing.T, err error, status int, key string) {
	t.Helper()
	appErr, ok := common.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.Code)
	if key != "" {
		assert.Equal(t, key, appErr.Key)
	}
}

func TestNewBooking(t *testing.T) {
	base := rides.Ride{
		ID:            uuid.New(),
		Price:         250.5,
		TotalSeats:    3,
		DepartureTime: fixedNow.Add(time.Hour),
		Status:        rides.StatusActive,
	}

	tests := []struct {
		name    string
		mutate  func(r *rides.Ride)
		seats   int
		wantErr error
	}{
		{name: "valid", seats: 2},
		{name: "whole ride", seats: 3},
		{name: "zero seats", seats: 0, wantErr: ledger.ErrInvalidSeatCount},
		{name: "more than capacity", seats: 4, wantErr: ledger.ErrInsufficientSeats},
		{name: "cancelled ride", seats: 1, mutate: func(r *rides.Ride) { r.Status = rides.StatusCancelled }, wantErr: ledger.ErrRideNotActive},
		{name: "completed ride", seats: 1, mutate: func(r *rides.Ride) { r.Status = rides.StatusCompleted }, wantErr: ledger.ErrRideNotActive},
		{name: "departed", seats: 1, mutate: func(r *rides.Ride) { r.DepartureTime = fixedNow }, wantErr: ErrRideDeparted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := base
			if tt.mutate != nil {
				tt.mutate(&ride)
			}
			passengerID := uuid.New()

			b, err := NewBooking(passengerID, &ride, tt.seats, fixedNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, passengerID, b.PassengerID)
			assert.Equal(t, ride.ID, b.RideID)
			assert.Equal(t, StatusConfirmed, b.Status)
			assert.Equal(t, 1, b.Version)
			assert.InDelta(t, float64(tt.seats)*250.5, b.TotalPrice, 0.001)
		})
	}
}

func TestFare(t *testing.T) {
	assert.Equal(t, 1500.0, Fare(3, 500))
	assert.Equal(t, 0.3, Fare(3, 0.1))
	assert.Equal(t, 0.0, Fare(2, 0))
}

// Four seats at 500 each: book 3, fail to book 2, cancel, edit to the same count.
func TestService_BookingWalkthrough(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})
	ctx := context.Background()
	alice, bob := passenger(), passenger()

	first, err := svc.CreateBooking(ctx, alice, ride.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, first.TotalPrice)
	assert.Equal(t, 1, store.ride(ride.ID).AvailableSeats)

	_, err = svc.CreateBooking(ctx, bob, ride.ID, 2)
	assertAppError(t, err, http.StatusConflict, "booking.error.insufficient_seats")
	assert.Equal(t, 1, store.ride(ride.ID).AvailableSeats)

	cancelled, err := svc.CancelBooking(ctx, alice, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 4, store.ride(ride.ID).AvailableSeats)

	single, err := svc.CreateBooking(ctx, bob, ride.ID, 1)
	require.NoError(t, err)
	unchanged, err := svc.EditBooking(ctx, bob, single.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, single.Version, unchanged.Version)
	assert.Equal(t, 3, store.ride(ride.ID).AvailableSeats)
}

func TestService_CreateBooking_Rejections(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})
	ctx := context.Background()

	banned := passenger()
	banned.Banned = true

	tests := []struct {
		name   string
		p      models.Principal
		rideID uuid.UUID
		seats  int
		status int
		key    string
	}{
		{name: "banned", p: banned, rideID: ride.ID, seats: 1, status: http.StatusForbidden, key: "account.error.banned"},
		{name: "driver cannot book", p: driverOf(ride), rideID: ride.ID, seats: 1, status: http.StatusForbidden},
		{name: "zero seats", p: passenger(), rideID: ride.ID, seats: 0, status: http.StatusBadRequest, key: "booking.error.invalid_seat_count"},
		{name: "unknown ride", p: passenger(), rideID: uuid.New(), seats: 1, status: http.StatusNotFound, key: "ride.error.not_found"},
		{name: "over capacity", p: passenger(), rideID: ride.ID, seats: 5, status: http.StatusConflict, key: "booking.error.insufficient_seats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBooking(ctx, tt.p, tt.rideID, tt.seats)
			assertAppError(t, err, tt.status, tt.key)
		})
	}
	assert.Equal(t, 4, store.ride(ride.ID).AvailableSeats)
	assert.Zero(t, store.confirmedSeats(ride.ID))
}

func TestService_CreateBooking_DepartedRide(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})
	svc.now = func() time.Time { return ride.DepartureTime.Add(time.Minute) }

	_, err := svc.CreateBooking(context.Background(), passenger(), ride.ID, 1)
	assertAppError(t, err, http.StatusConflict, "booking.error.ride_not_active")
	assert.Equal(t, 4, store.ride(ride.ID).AvailableSeats)
}

func TestService_CreateBooking_SurvivesCallerCancellation(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := svc.CreateBooking(ctx, passenger(), ride.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, store.booking(b.ID).SeatsBooked)
	assert.Equal(t, 2, store.ride(ride.ID).AvailableSeats)
}

func TestService_CreateThenCancelRestoresAvailability(t *testing.T) {
	for seats := 1; seats <= 4; seats++ {
		store := newMemStore()
		ride := seedRide(store, 4, 300)
		svc := newTestService(store, nil, ServiceConfig{})
		p := passenger()

		b, err := svc.CreateBooking(context.Background(), p, ride.ID, seats)
		require.NoError(t, err)
		_, err = svc.CancelBooking(context.Background(), p, b.ID)
		require.NoError(t, err)

		assert.Equal(t, 4, store.ride(ride.ID).AvailableSeats, "seats=%d", seats)
	}
}

func TestService_CancelBooking_Idempotent(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})
	p := passenger()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, p, ride.ID, 2)
	require.NoError(t, err)
	first, err := svc.CancelBooking(ctx, p, b.ID)
	require.NoError(t, err)
	second, err := svc.CancelBooking(ctx, p, b.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, StatusCancelled, second.Status)
	assert.Equal(t, 4, store.ride(ride.ID).AvailableSeats)
}

func TestService_CancelBooking_Authorization(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})
	owner := passenger()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, owner, ride.ID, 1)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, passenger(), b.ID)
	assertAppError(t, err, http.StatusForbidden, "")

	_, err = svc.CancelBooking(ctx, admin(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, store.ride(ride.ID).AvailableSeats)

	_, err = svc.CancelBooking(ctx, owner, uuid.New())
	assertAppError(t, err, http.StatusNotFound, "booking.error.not_found")
}

func TestService_EditBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("grow and shrink", func(t *testing.T) {
		store := newMemStore()
		ride := seedRide(store, 4, 500)
		svc := newTestService(store, nil, ServiceConfig{})
		p := passenger()

		b, err := svc.CreateBooking(ctx, p, ride.ID, 1)
		require.NoError(t, err)

		grown, err := svc.EditBooking(ctx, p, b.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, grown.SeatsBooked)
		assert.Equal(t, 1500.0, grown.TotalPrice)
		assert.Equal(t, 2, grown.Version)
		assert.Equal(t, 1, store.ride(ride.ID).AvailableSeats)

		shrunk, err := svc.EditBooking(ctx, p, b.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, shrunk.TotalPrice)
		assert.Equal(t, 3, shrunk.Version)
		assert.Equal(t, 2, store.ride(ride.ID).AvailableSeats)
	})

	t.Run("beyond availability leaves everything untouched", func(t *testing.T) {
		store := newMemStore()
		ride := seedRide(store, 4, 500)
		svc := newTestService(store, nil, ServiceConfig{})
		p, other := passenger(), passenger()

		b, err := svc.CreateBooking(ctx, p, ride.ID, 1)
		require.NoError(t, err)
		_, err = svc.CreateBooking(ctx, other, ride.ID, 2)
		require.NoError(t, err)

		_, err = svc.EditBooking(ctx, p, b.ID, 3)
		assertAppError(t, err, http.StatusConflict, "booking.error.insufficient_seats")

		stored := store.booking(b.ID)
		assert.Equal(t, 1, stored.SeatsBooked)
		assert.Equal(t, 500.0, stored.TotalPrice)
		assert.Equal(t, 1, stored.Version)
		assert.Equal(t, 1, store.ride(ride.ID).AvailableSeats)
	})

	t.Run("rejections", func(t *testing.T) {
		store := newMemStore()
		ride := seedRide(store, 4, 500)
		svc := newTestService(store, nil, ServiceConfig{EditCutoff: 2 * time.Hour})
		p := passenger()

		b, err := svc.CreateBooking(ctx, p, ride.ID, 1)
		require.NoError(t, err)
		cancelled, err := svc.CreateBooking(ctx, p, ride.ID, 1)
		require.NoError(t, err)
		_, err = svc.CancelBooking(ctx, p, cancelled.ID)
		require.NoError(t, err)

		_, err = svc.EditBooking(ctx, passenger(), b.ID, 2)
		assertAppError(t, err, http.StatusForbidden, "")

		_, err = svc.EditBooking(ctx, admin(), b.ID, 2)
		assertAppError(t, err, http.StatusForbidden, "")

		_, err = svc.EditBooking(ctx, p, b.ID, 0)
		assertAppError(t, err, http.StatusBadRequest, "booking.error.invalid_seat_count")

		_, err = svc.EditBooking(ctx, p, cancelled.ID, 2)
		assertAppError(t, err, http.StatusConflict, "booking.error.not_modifiable")

		svc.now = func() time.Time { return ride.DepartureTime.Add(-time.Hour) }
		_, err = svc.EditBooking(ctx, p, b.ID, 2)
		assertAppError(t, err, http.StatusConflict, "booking.error.not_modifiable")

		svc.now = func() time.Time { return ride.DepartureTime.Add(-3 * time.Hour) }
		_, err = svc.EditBooking(ctx, p, b.ID, 2)
		require.NoError(t, err)
	})

	t.Run("ride no longer active", func(t *testing.T) {
		store := newMemStore()
		ride := seedRide(store, 4, 500)
		svc := newTestService(store, nil, ServiceConfig{})
		p := passenger()

		b, err := svc.CreateBooking(ctx, p, ride.ID, 1)
		require.NoError(t, err)
		_, err = svc.CompleteRide(ctx, driverOf(ride), ride.ID)
		require.NoError(t, err)

		_, err = svc.EditBooking(ctx, p, b.ID, 2)
		assertAppError(t, err, http.StatusConflict, "booking.error.not_modifiable")
		_, err = svc.CancelBooking(ctx, p, b.ID)
		assertAppError(t, err, http.StatusConflict, "booking.error.not_modifiable")
	})
}

func TestService_EditBooking_RetriesConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("recovers", func(t *testing.T) {
		store := newMemStore()
		ride := seedRide(store, 4, 500)
		svc := newTestService(store, nil, ServiceConfig{ConflictRetries: 3})
		p := passenger()

		b, err := svc.CreateBooking(ctx, p, ride.ID, 1)
		require.NoError(t, err)

		store.conflicts = 2
		edited, err := svc.EditBooking(ctx, p, b.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, edited.SeatsBooked)
		assert.Equal(t, 2, store.ride(ride.ID).AvailableSeats)
	})

	t.Run("gives up", func(t *testing.T) {
		store := newMemStore()
		ride := seedRide(store, 4, 500)
		svc := newTestService(store, nil, ServiceConfig{ConflictRetries: 2})
		p := passenger()

		b, err := svc.CreateBooking(ctx, p, ride.ID, 1)
		require.NoError(t, err)

		store.conflicts = 10
		_, err = svc.EditBooking(ctx, p, b.ID, 2)
		assertAppError(t, err, http.StatusConflict, "booking.error.concurrency_conflict")
		assert.Equal(t, 1, store.booking(b.ID).SeatsBooked)
		assert.Equal(t, 3, store.ride(ride.ID).AvailableSeats)
	})
}

func TestService_CancelRide(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	cache := new(MockCache)
	cache.On("InvalidateDriver", mock.Anything, ride.DriverID).Return()
	svc := newTestService(store, cache, ServiceConfig{})
	ctx := context.Background()
	driver := driverOf(ride)

	first, err := svc.CreateBooking(ctx, passenger(), ride.ID, 1)
	require.NoError(t, err)
	second, err := svc.CreateBooking(ctx, passenger(), ride.ID, 2)
	require.NoError(t, err)

	_, err = svc.CancelRide(ctx, passenger(), ride.ID)
	assertAppError(t, err, http.StatusForbidden, "")

	result, err := svc.CancelRide(ctx, driver, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, rides.StatusCancelled, result.Ride.Status)
	assert.Equal(t, 2, result.CancelledBookings)
	assert.Equal(t, StatusCancelled, store.booking(first.ID).Status)
	assert.Equal(t, StatusCancelled, store.booking(second.ID).Status)
	assert.Zero(t, store.confirmedSeats(ride.ID))

	again, err := svc.CancelRide(ctx, driver, ride.ID)
	require.NoError(t, err)
	assert.Zero(t, again.CancelledBookings)

	_, err = svc.CreateBooking(ctx, passenger(), ride.ID, 1)
	assertAppError(t, err, http.StatusConflict, "booking.error.ride_not_active")

	_, err = svc.CompleteRide(ctx, driver, ride.ID)
	assertAppError(t, err, http.StatusConflict, "ride.error.not_modifiable")

	cache.AssertExpectations(t)
}

func TestService_CompleteRide(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	cache := new(MockCache)
	cache.On("InvalidateDriver", mock.Anything, ride.DriverID).Return()
	svc := newTestService(store, cache, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, passenger(), ride.ID, 2)
	require.NoError(t, err)

	completed, err := svc.CompleteRide(ctx, driverOf(ride), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, rides.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	_, err = svc.CompleteRide(ctx, admin(), ride.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, store.completed[ride.DriverID])
	assert.Equal(t, 2, store.confirmedSeats(ride.ID))

	_, err = svc.CancelRide(ctx, driverOf(ride), ride.ID)
	assertAppError(t, err, http.StatusConflict, "ride.error.not_modifiable")

	// one for the booking, one for the first completion; the repeat changes nothing
	cache.AssertNumberOfCalls(t, "InvalidateDriver", 2)
}

func TestService_BookingChangesInvalidateDriverAggregates(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	cache := new(MockCache)
	cache.On("InvalidateDriver", mock.Anything, ride.DriverID).Return()
	svc := newTestService(store, cache, ServiceConfig{})
	ctx := context.Background()
	p := passenger()

	b, err := svc.CreateBooking(ctx, p, ride.ID, 1)
	require.NoError(t, err)
	cache.AssertNumberOfCalls(t, "InvalidateDriver", 1)

	_, err = svc.CreateBooking(ctx, passenger(), ride.ID, 5)
	assertAppError(t, err, http.StatusConflict, "booking.error.insufficient_seats")
	cache.AssertNumberOfCalls(t, "InvalidateDriver", 1)

	_, err = svc.EditBooking(ctx, p, b.ID, 3)
	require.NoError(t, err)
	cache.AssertNumberOfCalls(t, "InvalidateDriver", 2)

	_, err = svc.EditBooking(ctx, p, b.ID, 3)
	require.NoError(t, err)
	cache.AssertNumberOfCalls(t, "InvalidateDriver", 2)

	_, err = svc.CancelBooking(ctx, p, b.ID)
	require.NoError(t, err)
	cache.AssertNumberOfCalls(t, "InvalidateDriver", 3)

	_, err = svc.CancelBooking(ctx, p, b.ID)
	require.NoError(t, err)
	cache.AssertNumberOfCalls(t, "InvalidateDriver", 3)
}

func TestService_CompleteRide_OtherDriver(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})

	other := models.Principal{UserID: uuid.New(), Role: models.RoleDriver, DriverVerified: true}
	_, err := svc.CompleteRide(context.Background(), other, ride.ID)
	assertAppError(t, err, http.StatusForbidden, "")
	assert.Equal(t, rides.StatusActive, store.ride(ride.ID).Status)
}

func TestService_GetBooking(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})
	ctx := context.Background()
	owner := passenger()

	b, err := svc.CreateBooking(ctx, owner, ride.ID, 1)
	require.NoError(t, err)

	for _, p := range []models.Principal{owner, driverOf(ride), admin()} {
		got, err := svc.GetBooking(ctx, p, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err = svc.GetBooking(ctx, passenger(), b.ID)
	assertAppError(t, err, http.StatusForbidden, "")
}

func TestService_ListBookings(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})
	ctx := context.Background()
	p := passenger()

	views, total, err := svc.ListPassengerBookings(ctx, p, 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Zero(t, total)

	_, err = svc.CreateBooking(ctx, p, ride.ID, 1)
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, passenger(), ride.ID, 2)
	require.NoError(t, err)

	views, total, err = svc.ListPassengerBookings(ctx, p, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, "Pune", views[0].Ride.FromLocation)

	list, err := svc.ListRideBookings(ctx, driverOf(ride), ride.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListRideBookings(ctx, p, ride.ID)
	assertAppError(t, err, http.StatusForbidden, "")
}

func TestService_ConcurrentFullBookings(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 4, 500)
	svc := newTestService(store, nil, ServiceConfig{})

	const contenders = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(context.Background(), passenger(), ride.ID, 4)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			appErr, ok := common.AsAppError(err)
			if assert.True(t, ok) {
				assert.Equal(t, "booking.error.insufficient_seats", appErr.Key)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Zero(t, store.ride(ride.ID).AvailableSeats)
	assert.Equal(t, 4, store.confirmedSeats(ride.ID))
}

// Random concurrent create, edit and cancel calls never oversell the ride and
// keep availability equal to capacity minus confirmed seats.
func TestService_ConcurrentLifecycleKeepsLedgerConsistent(t *testing.T) {
	store := newMemStore()
	ride := seedRide(store, 10, 120)
	svc := newTestService(store, nil, ServiceConfig{ConflictRetries: 5})

	const workers = 12
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			p := passenger()
			ctx := context.Background()

			var mine []uuid.UUID
			for i := 0; i < 25; i++ {
				switch op := rng.Intn(3); {
				case op == 0 || len(mine) == 0:
					b, err := svc.CreateBooking(ctx, p, ride.ID, 1+rng.Intn(3))
					if err == nil {
						mine = append(mine, b.ID)
					}
				case op == 1:
					_, _ = svc.EditBooking(ctx, p, mine[rng.Intn(len(mine))], 1+rng.Intn(4))
				default:
					_, _ = svc.CancelBooking(ctx, p, mine[rng.Intn(len(mine))])
				}

				confirmed := store.confirmedSeats(ride.ID)
				assert.LessOrEqual(t, confirmed, 10)
			}
		}(int64(w + 1))
	}
	wg.Wait()

	current := store.ride(ride.ID)
	confirmed := store.confirmedSeats(ride.ID)
	assert.LessOrEqual(t, confirmed, current.TotalSeats)
	assert.Equal(t, current.TotalSeats-confirmed, current.AvailableSeats)
	assert.GreaterOrEqual(t, current.AvailableSeats, 0)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		key    string
	}{
		{ledger.ErrInsufficientSeats, http.StatusConflict, "booking.error.insufficient_seats"},
		{ledger.ErrRideNotActive, http.StatusConflict, "booking.error.ride_not_active"},
		{ErrRideDeparted, http.StatusConflict, "booking.error.ride_not_active"},
		{ledger.ErrInvalidSeatCount, http.StatusBadRequest, "booking.error.invalid_seat_count"},
		{ErrNotModifiable, http.StatusConflict, "booking.error.not_modifiable"},
		{rides.ErrNotModifiable, http.StatusConflict, "ride.error.not_modifiable"},
		{ErrConcurrencyConflict, http.StatusConflict, "booking.error.concurrency_conflict"},
		{ErrBookingNotFound, http.StatusNotFound, "booking.error.not_found"},
		{rides.ErrRideNotFound, http.StatusNotFound, "ride.error.not_found"},
		{ledger.ErrRideNotFound, http.StatusNotFound, "ride.error.not_found"},
		{ErrNotOwner, http.StatusForbidden, ""},
		{errors.New("connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			err := mapError(tt.err)
			assertAppError(t, err, tt.status, tt.key)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	existing := common.NewForbiddenError("nope")
	assert.Same(t, existing, mapError(existing))
}
