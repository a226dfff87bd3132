package get_staff_bookings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type fakeService struct {
	got *models.ListBookingsRequest
	err error
}

func (f *fakeService) ListBookings(_ context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingListResponse{
		Bookings: []*models.BookingResponse{{ID: 1, StaffID: *req.StaffID, Status: "pending"}},
		Total:    1,
	}, nil
}

func serve(svc BookingService, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/staff/{staffId}/bookings", NewHandler(svc, logger.NewDiscard()).Handle).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_ParsesQuery(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, "/staff/7/bookings?from=2026-03-02T00:00:00%2B03:00&to=2026-03-03T00:00:00%2B03:00&status=paid&include_inactive=true")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"staff_id":7`)

	require.NotNil(t, svc.got)
	assert.Equal(t, int64(7), *svc.got.StaffID)
	assert.Nil(t, svc.got.ClientID)
	require.NotNil(t, svc.got.From)
	assert.True(t, svc.got.From.Equal(time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)))
	require.NotNil(t, svc.got.Status)
	assert.Equal(t, "paid", *svc.got.Status)
	assert.True(t, svc.got.IncludeInactive)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "/staff/x/bookings").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "/staff/7/bookings?from=yesterday").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "/staff/7/bookings?include_inactive=maybe").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{err: bookings.ErrInvalidInput}, "/staff/7/bookings").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(&fakeService{err: bookings.ErrUnavailable}, "/staff/7/bookings").Code)
}
