package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// CreateBookingRequest запрос на создание бронирования
type CreateBookingRequest struct {
	BusinessID    int64
	ServiceID     int64
	StaffID       int64
	ClientID      *int64
	ClientName    string
	ClientContact string
	StartAt       time.Time
	Notes         *string
	Source        string // telegram | direct, пусто = direct
}

// ListBookingsRequest запрос списка бронирований сотрудника или клиента
type ListBookingsRequest struct {
	StaffID         *int64
	ClientID        *int64
	From            *time.Time
	To              *time.Time
	Status          *string
	IncludeInactive bool
}

// BookingResponse бронирование. Время выражено в часовом поясе бизнеса.
type BookingResponse struct {
	ID              int64
	BusinessID      int64
	ServiceID       int64
	StaffID         int64
	ClientID        *int64
	ClientName      string
	ClientContact   string
	StartAt         time.Time
	EndAt           time.Time
	DurationMinutes int
	Status          string
	Source          string
	Price           float64
	Notes           *string
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingListResponse список бронирований
type BookingListResponse struct {
	Bookings []*BookingResponse
	Total    int
}

// FromDomainBooking конвертирует доменную модель в ответ
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	loc := b.Location()

	resp := &BookingResponse{
		ID:              b.ID,
		BusinessID:      b.BusinessID,
		ServiceID:       b.ServiceID,
		StaffID:         b.StaffID,
		ClientID:        b.Client.ID,
		ClientName:      b.Client.Name,
		ClientContact:   b.Client.Contact,
		StartAt:         b.StartAt.In(loc),
		EndAt:           b.EndAt().In(loc),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		Source:          string(b.Source),
		Price:           b.Price,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt.In(loc),
		UpdatedAt:       b.UpdatedAt.In(loc),
	}
	if b.CancelledAt != nil {
		at := b.CancelledAt.In(loc)
		resp.CancelledAt = &at
	}
	return resp
}

// FromDomainBookingList конвертирует список бронирований
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	result := &BookingListResponse{
		Bookings: make([]*BookingResponse, 0, len(bookings)),
		Total:    len(bookings),
	}
	for _, b := range bookings {
		result.Bookings = append(result.Bookings, FromDomainBooking(b))
	}
	return result
}

// ToDomainFilter конвертирует запрос списка в доменный фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		StaffID:         r.StaffID,
		ClientID:        r.ClientID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}
	if r.Status != nil {
		status, err := domain.ParseBookingStatus(*r.Status)
		if err != nil {
			return domain.BookingsFilter{}, err
		}
		filter.Status = &status
	}
	return filter, nil
}
