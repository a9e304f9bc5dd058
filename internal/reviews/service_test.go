package reviews

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository implements RepositoryInterface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetParticipants(ctx context.Context, bookingID uuid.UUID) (*Participants, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Participants), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, review *Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockRepository) ListReceived(ctx context.Context, subjectID uuid.UUID, direction Direction, limit, offset int) ([]*ReceivedReview, int64, error) {
	args := m.Called(ctx, subjectID, direction, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ReceivedReview), args.Get(1).(int64), args.Error(2)
}

// MockCache implements RatingCache for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateDriver(ctx context.Context, driverID uuid.UUID) {
	m.Called(ctx, driverID)
}

func (m *MockCache) InvalidatePassenger(ctx context.Context, passengerID uuid.UUID) {
	m.Called(ctx, passengerID)
}

func completedBooking() *Participants {
	return &Participants{
		BookingID:     uuid.New(),
		RideID:        uuid.New(),
		PassengerID:   uuid.New(),
		DriverID:      uuid.New(),
		BookingStatus: "confirmed",
		RideStatus:    "completed",
	}
}

func assertAppError(t *testing.T, err error, status int) *common.AppError {
	t.Helper()
	appErr, ok := common.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.Code)
	return appErr
}

func TestService_ReviewDriver(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)
	svc := NewService(repo, cache)
	parts := completedBooking()
	p := models.Principal{UserID: parts.PassengerID, Role: models.RolePassenger}

	repo.On("GetParticipants", mock.Anything, parts.BookingID).Return(parts, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *Review) bool {
		return r.AuthorID == parts.PassengerID && r.SubjectID == parts.DriverID &&
			r.Direction == PassengerToDriver && r.Rating == 5 && r.Text == "smooth drive"
	})).Return(nil)
	cache.On("InvalidateDriver", mock.Anything, parts.DriverID).Return()

	review, err := svc.ReviewDriver(context.Background(), p, parts.BookingID, &CreateReviewRequest{Rating: 5, Text: "  smooth drive "})
	require.NoError(t, err)
	assert.Equal(t, parts.RideID, review.RideID)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	cache.AssertNotCalled(t, "InvalidatePassenger", mock.Anything, mock.Anything)
}

func TestService_ReviewPassenger(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)
	svc := NewService(repo, cache)
	parts := completedBooking()
	p := models.Principal{UserID: parts.DriverID, Role: models.RoleDriver, DriverVerified: true}

	repo.On("GetParticipants", mock.Anything, parts.BookingID).Return(parts, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *Review) bool {
		return r.AuthorID == parts.DriverID && r.SubjectID == parts.PassengerID && r.Direction == DriverToPassenger
	})).Return(nil)
	cache.On("InvalidatePassenger", mock.Anything, parts.PassengerID).Return()

	_, err := svc.ReviewPassenger(context.Background(), p, parts.BookingID, &CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestService_Review_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(parts *Participants)
		actor  func(parts *Participants) models.Principal
		rating int
		status int
	}{
		{
			name:   "driver cannot use the passenger direction",
			actor:  func(parts *Participants) models.Principal { return models.Principal{UserID: parts.DriverID, Role: models.RoleDriver} },
			rating: 5,
			status: http.StatusForbidden,
		},
		{
			name:   "stranger",
			actor:  func(*Participants) models.Principal { return models.Principal{UserID: uuid.New(), Role: models.RolePassenger} },
			rating: 5,
			status: http.StatusForbidden,
		},
		{
			name:   "ride still active",
			mutate: func(parts *Participants) { parts.RideStatus = "active" },
			rating: 5,
			status: http.StatusConflict,
		},
		{
			name:   "ride cancelled",
			mutate: func(parts *Participants) { parts.RideStatus = "cancelled" },
			rating: 3,
			status: http.StatusConflict,
		},
		{
			name:   "booking cancelled",
			mutate: func(parts *Participants) { parts.BookingStatus = "cancelled" },
			rating: 3,
			status: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo, nil)
			parts := completedBooking()
			if tt.mutate != nil {
				tt.mutate(parts)
			}
			p := models.Principal{UserID: parts.PassengerID, Role: models.RolePassenger}
			if tt.actor != nil {
				p = tt.actor(parts)
			}

			repo.On("GetParticipants", mock.Anything, parts.BookingID).Return(parts, nil)

			_, err := svc.ReviewDriver(context.Background(), p, parts.BookingID, &CreateReviewRequest{Rating: tt.rating})
			assertAppError(t, err, tt.status)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Review_InvalidInput(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)
	p := models.Principal{UserID: uuid.New(), Role: models.RolePassenger}

	_, err := svc.ReviewDriver(context.Background(), p, uuid.New(), &CreateReviewRequest{Rating: 6})
	assertAppError(t, err, http.StatusBadRequest)

	p.Banned = true
	_, err = svc.ReviewDriver(context.Background(), p, uuid.New(), &CreateReviewRequest{Rating: 5})
	appErr := assertAppError(t, err, http.StatusForbidden)
	assert.Equal(t, "account.error.banned", appErr.Key)

	repo.AssertNotCalled(t, "GetParticipants", mock.Anything, mock.Anything)
}

func TestService_Review_Duplicate(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)
	svc := NewService(repo, cache)
	parts := completedBooking()
	p := models.Principal{UserID: parts.PassengerID, Role: models.RolePassenger}

	repo.On("GetParticipants", mock.Anything, parts.BookingID).Return(parts, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(ErrDuplicateReview)

	_, err := svc.ReviewDriver(context.Background(), p, parts.BookingID, &CreateReviewRequest{Rating: 2})
	appErr := assertAppError(t, err, http.StatusConflict)
	assert.Equal(t, "review.error.duplicate", appErr.Key)
	cache.AssertNotCalled(t, "InvalidateDriver", mock.Anything, mock.Anything)
}

func TestService_Review_UnknownBooking(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)
	bookingID := uuid.New()

	repo.On("GetParticipants", mock.Anything, bookingID).Return(nil, ErrBookingNotFound)

	_, err := svc.ReviewDriver(context.Background(), models.Principal{UserID: uuid.New(), Role: models.RolePassenger}, bookingID, &CreateReviewRequest{Rating: 5})
	assertAppError(t, err, http.StatusNotFound)
}

func TestService_ListDriverReviews(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)
	driverID := uuid.New()
	list := []*ReceivedReview{{Review: Review{Rating: 5}, AuthorName: "Asha"}}

	repo.On("ListReceived", mock.Anything, driverID, PassengerToDriver, 20, 0).Return(list, int64(1), nil)

	got, total, err := svc.ListDriverReviews(context.Background(), driverID, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Asha", got[0].AuthorName)

	repo.On("ListReceived", mock.Anything, driverID, PassengerToDriver, 20, 20).Return(nil, int64(0), errors.New("db down"))
	_, _, err = svc.ListDriverReviews(context.Background(), driverID, 20, 20)
	assertAppError(t, err, http.StatusInternalServerError)
}
