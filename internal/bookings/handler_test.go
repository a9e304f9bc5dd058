package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/seatshare/internal/ledger"
	"github.com/richxcame/seatshare/internal/rides"
	"github.com/richxcame/seatshare/pkg/i18n"
	"github.com/richxcame/seatshare/pkg/middleware"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockService implements ServiceInterface for testing
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateBooking(ctx context.Context, p models.Principal, rideID uuid.UUID, seats int) (*Booking, error) {
	args := m.Called(ctx, p, rideID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) EditBooking(ctx context.Context, p models.Principal, bookingID uuid.UUID, newSeats int) (*Booking, error) {
	args := m.Called(ctx, p, bookingID, newSeats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) CancelBooking(ctx context.Context, p models.Principal, bookingID uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, p, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) CancelRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*CancelRideResult, error) {
	args := m.Called(ctx, p, rideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CancelRideResult), args.Error(1)
}

func (m *MockService) CompleteRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*rides.Ride, error) {
	args := m.Called(ctx, p, rideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rides.Ride), args.Error(1)
}

func (m *MockService) GetBooking(ctx context.Context, p models.Principal, bookingID uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, p, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) ListPassengerBookings(ctx context.Context, p models.Principal, limit, offset int) ([]*BookingView, int64, error) {
	args := m.Called(ctx, p, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*BookingView), args.Get(1).(int64), args.Error(2)
}

func (m *MockService) ListRideBookings(ctx context.Context, p models.Principal, rideID uuid.UUID) ([]*RideBooking, error) {
	args := m.Called(ctx, p, rideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*RideBooking), args.Error(1)
}

func setupRouter(svc *MockService, principal *models.Principal) *gin.Engine {
	h := NewHandler(svc)
	r := gin.New()
	api := r.Group("/api/v1")
	if principal != nil {
		api.Use(func(c *gin.Context) {
			middleware.SetPrincipal(c, *principal)
			c.Next()
		})
	}
	h.RegisterRoutes(api, api.Group("/driver"), api.Group("/admin"))
	return r
}

func doJSON(router *gin.Engine, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandler_CreateBooking(t *testing.T) {
	svc := new(MockService)
	p := passenger()
	router := setupRouter(svc, &p)
	rideID := uuid.New()
	booking := &Booking{ID: uuid.New(), PassengerID: p.UserID, RideID: rideID, SeatsBooked: 2, TotalPrice: 1000, Status: StatusConfirmed, Version: 1}

	svc.On("CreateBooking", mock.Anything, p, rideID, 2).Return(booking, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/bookings", gin.H{"ride_id": rideID, "seats": 2})

	require.Equal(t, http.StatusCreated, w.Code)
	body := parseResponse(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, booking.ID.String(), data["id"])
	assert.Equal(t, float64(1000), data["total_price"])
	assert.Equal(t, "confirmed", data["status"])
	svc.AssertExpectations(t)
}

func TestHandler_CreateBooking_InvalidBody(t *testing.T) {
	svc := new(MockService)
	p := passenger()
	router := setupRouter(svc, &p)

	bodies := []interface{}{
		gin.H{"seats": 2},
		gin.H{"ride_id": uuid.New(), "seats": 0},
		gin.H{"ride_id": "not-a-uuid", "seats": 1},
		gin.H{"ride_id": uuid.New(), "seats": -3},
	}
	for _, b := range bodies {
		w := doJSON(router, http.MethodPost, "/api/v1/bookings", b)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", b)
	}
	svc.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_CreateBooking_LocalizedError(t *testing.T) {
	svc := new(MockService)
	p := passenger()
	router := setupRouter(svc, &p)
	rideID := uuid.New()

	svc.On("CreateBooking", mock.Anything, p, rideID, 3).Return(nil, mapError(ledger.ErrInsufficientSeats))

	w := doJSON(router, http.MethodPost, "/api/v1/bookings", gin.H{"ride_id": rideID, "seats": 3}, "Accept-Language", "hi-IN,hi;q=0.9")

	require.Equal(t, http.StatusConflict, w.Code)
	body := parseResponse(t, w)
	assert.False(t, body["success"].(bool))
	errInfo := body["error"].(map[string]interface{})
	assert.Equal(t, i18n.Translate("booking.error.insufficient_seats", "hi"), errInfo["message"])
}

func TestHandler_Unauthorized(t *testing.T) {
	svc := new(MockService)
	router := setupRouter(svc, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/bookings", gin.H{"ride_id": uuid.New(), "seats": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/bookings/"+uuid.NewString()+"/cancel", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_InvalidIDs(t *testing.T) {
	svc := new(MockService)
	p := passenger()
	router := setupRouter(svc, &p)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/bookings/abc"},
		{http.MethodPost, "/api/v1/bookings/abc/cancel"},
		{http.MethodPost, "/api/v1/driver/rides/abc/complete"},
		{http.MethodPost, "/api/v1/admin/rides/abc/cancel"},
	} {
		w := doJSON(router, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.path)
	}
}

func TestHandler_EditSeats(t *testing.T) {
	svc := new(MockService)
	p := passenger()
	router := setupRouter(svc, &p)
	bookingID := uuid.New()

	svc.On("EditBooking", mock.Anything, p, bookingID, 3).
		Return(&Booking{ID: bookingID, SeatsBooked: 3, TotalPrice: 1500, Version: 2}, nil)

	w := doJSON(router, http.MethodPut, "/api/v1/bookings/"+bookingID.String()+"/seats", gin.H{"seats": 3})

	require.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["seats_booked"])
	assert.Equal(t, float64(2), data["version"])
	svc.AssertExpectations(t)
}

func TestHandler_CancelBooking_NotModifiable(t *testing.T) {
	svc := new(MockService)
	p := passenger()
	router := setupRouter(svc, &p)
	bookingID := uuid.New()

	svc.On("CancelBooking", mock.Anything, p, bookingID).Return(nil, mapError(ErrNotModifiable))

	w := doJSON(router, http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_ListBookings(t *testing.T) {
	svc := new(MockService)
	p := passenger()
	router := setupRouter(svc, &p)
	view := &BookingView{Booking: &Booking{ID: uuid.New()}, Ride: RideSummary{FromLocation: "Pune", ToLocation: "Goa"}}

	svc.On("ListPassengerBookings", mock.Anything, p, 10, 0).Return([]*BookingView{view}, int64(1), nil)

	w := doJSON(router, http.MethodGet, "/api/v1/bookings?limit=10", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := parseResponse(t, w)
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["bookings"], 1)
	assert.Equal(t, float64(1), body["meta"].(map[string]interface{})["total"])
}

func TestHandler_RideLifecycle(t *testing.T) {
	svc := new(MockService)
	driver := models.Principal{UserID: uuid.New(), Role: models.RoleDriver, DriverVerified: true}
	router := setupRouter(svc, &driver)
	rideID := uuid.New()

	svc.On("CompleteRide", mock.Anything, driver, rideID).
		Return(&rides.Ride{ID: rideID, Status: rides.StatusCompleted}, nil)
	svc.On("CancelRide", mock.Anything, driver, rideID).
		Return(&CancelRideResult{Ride: &rides.Ride{ID: rideID, Status: rides.StatusCancelled}, CancelledBookings: 3}, nil)
	svc.On("ListRideBookings", mock.Anything, driver, rideID).
		Return([]*RideBooking{{SeatsBooked: 2}, {SeatsBooked: 1}}, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/driver/rides/"+rideID.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", parseResponse(t, w)["data"].(map[string]interface{})["status"])

	w = doJSON(router, http.MethodPost, "/api/v1/driver/rides/"+rideID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), parseResponse(t, w)["data"].(map[string]interface{})["cancelled_bookings"])

	w = doJSON(router, http.MethodGet, "/api/v1/driver/rides/"+rideID.String()+"/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), parseResponse(t, w)["data"].(map[string]interface{})["seats_booked"])

	svc.AssertExpectations(t)
}
