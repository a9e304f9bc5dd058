package bookings

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/internal/ledger"
	"github.com/richxcame/seatshare/internal/rides"
)

// memStore is an in-memory RepositoryInterface. Transactions run one at a time
// on a copy of the state that is swapped in only on commit.
type memStore struct {
	mu        sync.Mutex
	rides     map[uuid.UUID]rides.Ride
	bookings  map[uuid.UUID]Booking
	completed map[uuid.UUID]int

	// conflicts makes the next N versioned booking writes fail as if another
	// request had won the race
	conflicts int
	txCount   int
}

func newMemStore() *memStore {
	return &memStore{
		rides:     map[uuid.UUID]rides.Ride{},
		bookings:  map[uuid.UUID]Booking{},
		completed: map[uuid.UUID]int{},
	}
}

func (m *memStore) addRide(r *rides.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[r.ID] = *r
}

func (m *memStore) ride(id uuid.UUID) rides.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rides[id]
}

func (m *memStore) booking(id uuid.UUID) Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

// confirmedSeats sums seats of confirmed bookings on the ride
func (m *memStore) confirmedSeats(rideID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, b := range m.bookings {
		if b.RideID == rideID && b.Status == StatusConfirmed {
			total += b.SeatsBooked
		}
	}
	return total
}

func (m *memStore) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	tx := &memTx{
		store:     m,
		rides:     make(map[uuid.UUID]rides.Ride, len(m.rides)),
		bookings:  make(map[uuid.UUID]Booking, len(m.bookings)),
		completed: make(map[uuid.UUID]int, len(m.completed)),
	}
	for k, v := range m.rides {
		tx.rides[k] = v
	}
	for k, v := range m.bookings {
		tx.bookings[k] = v
	}
	for k, v := range m.completed {
		tx.completed[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}

	m.rides, m.bookings, m.completed = tx.rides, tx.bookings, tx.completed
	return nil
}

func (m *memStore) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (m *memStore) GetRide(ctx context.Context, id uuid.UUID) (*rides.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, rides.ErrRideNotFound
	}
	return &r, nil
}

func (m *memStore) ListPassengerBookings(ctx context.Context, passengerID uuid.UUID, limit, offset int) ([]*BookingView, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var views []*BookingView
	for _, b := range m.bookings {
		if b.PassengerID != passengerID {
			continue
		}
		b := b
		r := m.rides[b.RideID]
		views = append(views, &BookingView{Booking: &b, Ride: RideSummary{
			FromLocation: r.FromLocation, ToLocation: r.ToLocation,
			DepartureTime: r.DepartureTime, Price: r.Price, Status: r.Status,
		}})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Booking.CreatedAt.After(views[j].Booking.CreatedAt) })

	total := int64(len(views))
	if offset >= len(views) {
		return []*BookingView{}, total, nil
	}
	end := offset + limit
	if end > len(views) {
		end = len(views)
	}
	return views[offset:end], total, nil
}

func (m *memStore) ListRideBookings(ctx context.Context, rideID uuid.UUID) ([]*RideBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var list []*RideBooking
	for _, b := range m.bookings {
		if b.RideID == rideID && b.Status == StatusConfirmed {
			list = append(list, &RideBooking{BookingID: b.ID, PassengerID: b.PassengerID, SeatsBooked: b.SeatsBooked, TotalPrice: b.TotalPrice})
		}
	}
	return list, nil
}

// memTx mirrors the SQL statements of txStore on copied state
type memTx struct {
	store     *memStore
	rides     map[uuid.UUID]rides.Ride
	bookings  map[uuid.UUID]Booking
	completed map[uuid.UUID]int
}

func (t *memTx) GetRide(ctx context.Context, id uuid.UUID) (*rides.Ride, error) {
	r, ok := t.rides[id]
	if !ok {
		return nil, rides.ErrRideNotFound
	}
	return &r, nil
}

func (t *memTx) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, ok := t.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *Booking) error {
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) UpdateBookingSeats(ctx context.Context, b *Booking, expectedVersion int) error {
	stored, ok := t.bookings[b.ID]
	if t.store.conflicts > 0 {
		t.store.conflicts--
		return ErrConcurrencyConflict
	}
	if !ok || stored.Version != expectedVersion || stored.Status != StatusConfirmed {
		return ErrConcurrencyConflict
	}
	b.Version = expectedVersion + 1
	b.UpdatedAt = time.Now()
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) CancelBooking(ctx context.Context, b *Booking, expectedVersion int) error {
	stored, ok := t.bookings[b.ID]
	if t.store.conflicts > 0 {
		t.store.conflicts--
		return ErrConcurrencyConflict
	}
	if !ok || stored.Version != expectedVersion || stored.Status != StatusConfirmed {
		return ErrConcurrencyConflict
	}
	now := time.Now()
	b.Status = StatusCancelled
	b.Version = expectedVersion + 1
	b.CancelledAt = &now
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) TransitionRide(ctx context.Context, rideID uuid.UUID, to rides.Status) (*rides.Ride, error) {
	r, ok := t.rides[rideID]
	if !ok || r.Status != rides.StatusActive {
		return nil, ErrConcurrencyConflict
	}
	now := time.Now()
	r.Status = to
	if to == rides.StatusCompleted {
		r.CompletedAt = &now
	} else {
		r.CancelledAt = &now
	}
	t.rides[rideID] = r
	return &r, nil
}

func (t *memTx) CancelRideBookings(ctx context.Context, rideID uuid.UUID) (int, error) {
	n := 0
	for id, b := range t.bookings {
		if b.RideID == rideID && b.Status == StatusConfirmed {
			b.Status = StatusCancelled
			b.Version++
			t.bookings[id] = b
			n++
		}
	}
	return n, nil
}

func (t *memTx) IncrementCompletedRides(ctx context.Context, driverID uuid.UUID) error {
	t.completed[driverID]++
	return nil
}

func (t *memTx) Reserve(ctx context.Context, rideID uuid.UUID, count int) error {
	if count < 1 {
		return ledger.ErrInvalidSeatCount
	}
	r, ok := t.rides[rideID]
	switch {
	case !ok:
		return ledger.ErrRideNotFound
	case r.Status != rides.StatusActive:
		return ledger.ErrRideNotActive
	case r.AvailableSeats < count:
		return ledger.ErrInsufficientSeats
	}
	r.AvailableSeats -= count
	t.rides[rideID] = r
	return nil
}

func (t *memTx) Release(ctx context.Context, rideID uuid.UUID, count int) error {
	if count < 1 {
		return ledger.ErrInvalidSeatCount
	}
	r, ok := t.rides[rideID]
	switch {
	case !ok:
		return ledger.ErrRideNotFound
	case r.Status != rides.StatusActive:
		return ledger.ErrRideNotActive
	}
	r.AvailableSeats += count
	if r.AvailableSeats > r.TotalSeats {
		r.AvailableSeats = r.TotalSeats
	}
	t.rides[rideID] = r
	return nil
}

func (t *memTx) Adjust(ctx context.Context, rideID uuid.UUID, delta int) error {
	switch {
	case delta > 0:
		return t.Reserve(ctx, rideID, delta)
	case delta < 0:
		return t.Release(ctx, rideID, -delta)
	}
	return nil
}
