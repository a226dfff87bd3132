package catalogservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/internal/services/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"business_id":10,"name":"Haircut","duration_minutes":60,"price":"1500.00","is_active":true}`))
	})
	mux.HandleFunc("/internal/services/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"business_id":10,"name":"Broken","duration_minutes":0}`))
	})
	mux.HandleFunc("/internal/staff/5", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id":5,"business_id":10,"full_name":"Anna","timezone":"Europe/Moscow","is_active":true,
			"working_hours":[{"weekday":1,"start":"09:00","end":"13:00"},{"weekday":7,"start":"10:00:00","end":"14:00:00"}],
			"schedules":[
				{"day":"2026-03-03","schedule_type":"day_off"},
				{"day":"2026-03-02","schedule_type":"break","start_time":"11:00","end_time":"11:30"}
			]
		}`))
	})
	mux.HandleFunc("/internal/staff/6", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/internal/staff/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"timezone":"Mars/Olympus"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetService(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, logger.NewDiscard())

	service, err := client.GetService(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), service.BusinessID)
	assert.Equal(t, 60, service.DurationMinutes)
	assert.InDelta(t, 1500.0, service.Price, 0.001)
	assert.True(t, service.IsActive)

	_, err = client.GetService(context.Background(), 2)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = client.GetService(context.Background(), 404)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestClient_GetStaff(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, logger.NewDiscard())

	staff, err := client.GetStaff(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "Anna", staff.FullName)
	require.Len(t, staff.Weekly[time.Monday], 1)
	assert.Equal(t, domain.TimeRange{Start: "09:00", End: "13:00"}, staff.Weekly[time.Monday][0])
	require.Len(t, staff.Weekly[time.Sunday], 1)
	assert.Equal(t, domain.TimeRange{Start: "10:00", End: "14:00"}, staff.Weekly[time.Sunday][0])

	require.Len(t, staff.Overrides, 2)
	assert.Equal(t, domain.ScheduleDayOff, staff.Overrides[0].Type)
	assert.Equal(t, domain.ScheduleBreak, staff.Overrides[1].Type)

	_, err = client.GetStaff(context.Background(), 404)
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestClient_Errors(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, logger.NewDiscard())

	_, err := client.GetStaff(context.Background(), 6)
	assert.ErrorIs(t, err, ErrInternal)

	_, err = client.GetStaff(context.Background(), 7)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	down := NewClient("http://127.0.0.1:1", 100*time.Millisecond, logger.NewDiscard())
	_, err = down.GetService(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInternal)
}
