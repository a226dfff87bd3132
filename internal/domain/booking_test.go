package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusNoShow, false},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusPaid, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusPending, false},
		{StatusPaid, StatusCompleted, true},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusNoShow, false},
		{StatusNoShow, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("no_show")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, status)

	_, err = ParseBookingStatus("in_progress")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestParseBookingSource(t *testing.T) {
	src, err := ParseBookingSource("")
	require.NoError(t, err)
	assert.Equal(t, SourceDirect, src)

	_, err = ParseBookingSource("email")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestBooking_IsActive(t *testing.T) {
	for _, status := range ActiveStatuses {
		assert.True(t, (&Booking{Status: status}).IsActive(), status)
	}
	for _, status := range []BookingStatus{StatusNoShow, StatusCompleted, StatusCancelled} {
		assert.False(t, (&Booking{Status: status}).IsActive(), status)
	}
}

func TestBooking_CloneIsDeep(t *testing.T) {
	clientID := int64(5)
	notes := "window seat"
	original := &Booking{ID: 1, Client: Client{ID: &clientID}, Notes: &notes}

	clone := original.Clone()
	*clone.Client.ID = 6
	*clone.Notes = "aisle"

	assert.Equal(t, int64(5), *original.Client.ID)
	assert.Equal(t, "window seat", *original.Notes)
}

func TestBookingsFilter_Matches(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	clientID := int64(9)
	b := &Booking{StaffID: 1, Client: Client{ID: &clientID}, StartAt: start, DurationMinutes: 60, Status: StatusCancelled}

	staff := int64(1)
	assert.False(t, BookingsFilter{StaffID: &staff}.Matches(b))
	assert.True(t, BookingsFilter{StaffID: &staff, IncludeInactive: true}.Matches(b))

	cancelled := StatusCancelled
	assert.True(t, BookingsFilter{ClientID: &clientID, Status: &cancelled}.Matches(b))

	from := start.Add(time.Hour)
	assert.False(t, BookingsFilter{From: &from, IncludeInactive: true}.Matches(b))
}

func TestInterval_Overlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC) }

	a := Interval{Start: at(10, 0), End: at(11, 0)}

	assert.True(t, a.Overlaps(Interval{Start: at(10, 30), End: at(11, 30)}))
	assert.True(t, a.Overlaps(Interval{Start: at(9, 0), End: at(12, 0)}))
	assert.False(t, a.Overlaps(Interval{Start: at(11, 0), End: at(12, 0)}), "touching end")
	assert.False(t, a.Overlaps(Interval{Start: at(9, 0), End: at(10, 0)}), "touching start")

	assert.True(t, a.Contains(Interval{Start: at(10, 0), End: at(11, 0)}))
	assert.False(t, a.Contains(Interval{Start: at(10, 30), End: at(11, 30)}))
}
