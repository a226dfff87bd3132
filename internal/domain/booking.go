package domain

import (
	"fmt"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusPaid      BookingStatus = "paid"
	StatusNoShow    BookingStatus = "no_show"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// BookingSource describes the channel the booking came from
type BookingSource string

const (
	SourceDirect   BookingSource = "direct"
	SourceTelegram BookingSource = "telegram"
)

// transitions lists the statuses reachable from each status
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusPaid, StatusCancelled},
	StatusConfirmed: {StatusPaid, StatusCancelled, StatusNoShow, StatusCompleted},
	StatusPaid:      {StatusCompleted, StatusCancelled},
	StatusNoShow:    {StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

// ParseBookingStatus converts a raw string into a known status
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// ParseBookingSource converts a raw string into a booking source. Empty means direct.
func ParseBookingSource(s string) (BookingSource, error) {
	switch BookingSource(s) {
	case "", SourceDirect:
		return SourceDirect, nil
	case SourceTelegram:
		return SourceTelegram, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// CanTransitionTo reports whether a booking in status s may move to next
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Blocks reports whether a booking in this status occupies staff time
func (s BookingStatus) Blocks() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusPaid
}

// Client identifies who the booking is for. ID is set for registered clients only.
type Client struct {
	ID      *int64
	Name    string
	Contact string
}

// Booking represents an appointment of a client with a staff member
type Booking struct {
	ID         int64
	BusinessID int64
	ServiceID  int64
	StaffID    int64
	Client     Client

	StartAt         time.Time
	DurationMinutes int    // copied from the service at creation
	Timezone        string // staff timezone at the last placement
	Status          BookingStatus
	Source          BookingSource

	// Denormalized data for history
	Price float64
	Notes *string

	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EndAt returns the exclusive end of the booking
func (b *Booking) EndAt() time.Time {
	return b.StartAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// Location returns the booking's timezone, UTC when it cannot be loaded
func (b *Booking) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Interval returns the half-open time range occupied by the booking
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt()}
}

// IsActive returns true if the booking occupies the staff member's time
func (b *Booking) IsActive() bool {
	return b.Status.Blocks()
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// Clone returns a deep copy
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	if b.Client.ID != nil {
		id := *b.Client.ID
		c.Client.ID = &id
	}
	if b.Notes != nil {
		notes := *b.Notes
		c.Notes = &notes
	}
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		c.CancelledAt = &at
	}
	return &c
}

// BookingsFilter selects bookings for listing.
type BookingsFilter struct {
	StaffID         *int64         // by staff member
	ClientID        *int64         // by client
	From            *time.Time     // period start, inclusive
	To              *time.Time     // period end, exclusive
	Status          *BookingStatus // by status
	IncludeInactive bool           // also return bookings that do not hold time
}

// Matches reports whether the booking passes the filter
func (f BookingsFilter) Matches(b *Booking) bool {
	if f.StaffID != nil && b.StaffID != *f.StaffID {
		return false
	}
	if f.ClientID != nil && (b.Client.ID == nil || *b.Client.ID != *f.ClientID) {
		return false
	}
	if f.From != nil && !b.EndAt().After(*f.From) {
		return false
	}
	if f.To != nil && !b.StartAt.Before(*f.To) {
		return false
	}
	if f.Status != nil {
		return b.Status == *f.Status
	}
	return f.IncludeInactive || b.IsActive()
}
