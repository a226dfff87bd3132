package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type fakeUseCase struct {
	got  *getAvailableSlots.Request
	resp *getAvailableSlots.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.got = req
	return f.resp, f.err
}

func serve(uc GetAvailableSlotsUseCase, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/booking/slots", strings.NewReader(body))
	NewHandler(uc, logger.NewDiscard()).Handle(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)

	uc := &fakeUseCase{resp: &getAvailableSlots.Response{
		Slots: []domain.Slot{{Start: start, End: start.Add(time.Hour)}},
	}}

	rec := serve(uc, `{"business_id":10,"service_id":1,"staff_id":7,"day":"2026-03-02","step_minutes":30}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body []AvailableSlot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []AvailableSlot{{StartAt: "2026-03-02T09:00:00+03:00", EndAt: "2026-03-02T10:00:00+03:00"}}, body)

	require.NotNil(t, uc.got)
	assert.Equal(t, 30, uc.got.StepMinutes)
	assert.Equal(t, "2026-03-02", uc.got.Day.Format(domain.DateFormat))
}

func TestHandle_EmptyIsArray(t *testing.T) {
	rec := serve(&fakeUseCase{resp: &getAvailableSlots.Response{}},
		`{"business_id":10,"service_id":1,"staff_id":7,"day":"2026-03-02"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	valid := `{"business_id":10,"service_id":1,"staff_id":7,"day":"2026-03-02"}`

	cases := []struct {
		name   string
		body   string
		err    error
		status int
		kind   string
	}{
		{"bad json", `{`, nil, http.StatusBadRequest, "InvalidInput"},
		{"bad date", `{"business_id":10,"service_id":1,"staff_id":7,"day":"02.03.2026"}`, nil, http.StatusBadRequest, "InvalidInput"},
		{"invalid step", valid, getAvailableSlots.ErrInvalidInput, http.StatusBadRequest, "InvalidInput"},
		{"service", valid, getAvailableSlots.ErrServiceNotFound, http.StatusNotFound, "NotFound"},
		{"staff", valid, getAvailableSlots.ErrStaffNotFound, http.StatusNotFound, "NotFound"},
		{"unavailable", valid, getAvailableSlots.ErrUnavailable, http.StatusServiceUnavailable, "Unavailable"},
		{"internal", valid, getAvailableSlots.ErrInternal, http.StatusInternalServerError, "Internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(&fakeUseCase{err: tc.err}, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"kind":"`+tc.kind+`"`)
		})
	}
}
