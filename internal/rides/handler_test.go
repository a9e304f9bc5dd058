package rides

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/middleware"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(repo *MockRepository, principal *models.Principal) *gin.Engine {
	h := NewHandler(newTestService(repo))
	r := gin.New()
	public := r.Group("/api/v1")
	driver := r.Group("/api/v1/driver")
	if principal != nil {
		driver.Use(func(c *gin.Context) {
			middleware.SetPrincipal(c, *principal)
			c.Next()
		})
	}
	h.RegisterRoutes(public, driver)
	return r
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandler_SearchRides(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo, nil)
	listing := &Listing{Ride: activeRide(uuid.New()), Driver: DriverSummary{Name: "Ravi"}}

	repo.On("ListActive", mock.Anything, mock.MatchedBy(func(q SearchQuery) bool {
		return q.Filters.From == "Pune" && q.Filters.PriceBand == PriceUnder500 && q.Limit == 5 && q.Offset == 10
	})).Return([]*Listing{listing}, int64(11), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rides?from=Pune&price=under-500&limit=5&offset=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := parseResponse(t, w)
	assert.True(t, body["success"].(bool))
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(11), meta["total"])
	assert.Equal(t, float64(3), meta["total_pages"])
	repo.AssertExpectations(t)
}

func TestHandler_SearchRides_InvalidFilter(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo, nil)

	for _, query := range []string{"price=cheap", "time=lunch", "min_rating=9"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/rides?"+query, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
	repo.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything)
}

func TestHandler_GetRide(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo, nil)
	ride := activeRide(uuid.New())

	repo.On("GetRide", mock.Anything, ride.ID).Return(ride, nil)
	repo.On("GetRide", mock.Anything, mock.Anything).Return(nil, ErrRideNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rides/"+ride.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rides/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rides/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateRide(t *testing.T) {
	driver := verifiedDriver()
	repo := new(MockRepository)
	router := setupRouter(repo, &driver)

	repo.On("CreateRide", mock.Anything, mock.AnythingOfType("*rides.Ride")).Return(nil)

	payload, _ := json.Marshal(map[string]interface{}{
		"from_location":  "Pune",
		"to_location":    "Mumbai",
		"price":          450,
		"total_seats":    3,
		"departure_time": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/driver/rides", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["available_seats"])
	assert.Nil(t, data["is_ride_completed"])
}

func TestHandler_CreateRide_ValidationErrors(t *testing.T) {
	driver := verifiedDriver()
	repo := new(MockRepository)
	router := setupRouter(repo, &driver)

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{name: "missing price", payload: map[string]interface{}{"from_location": "A", "to_location": "B", "total_seats": 2, "departure_time": time.Now().Add(time.Hour).Format(time.RFC3339)}},
		{name: "past departure", payload: map[string]interface{}{"from_location": "A", "to_location": "B", "price": 10, "total_seats": 2, "departure_time": time.Now().Add(-time.Hour).Format(time.RFC3339)}},
		{name: "zero seats", payload: map[string]interface{}{"from_location": "A", "to_location": "B", "price": 10, "total_seats": 0, "departure_time": time.Now().Add(time.Hour).Format(time.RFC3339)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _ := json.Marshal(tt.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/driver/rides", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	repo.AssertNotCalled(t, "CreateRide", mock.Anything, mock.Anything)
}

func TestHandler_DriverRoutesNeedPrincipal(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/driver/rides", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
