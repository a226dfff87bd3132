package handlers

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// BookingResponse HTTP модель бронирования
type BookingResponse struct {
	ID              int64   `json:"id"`
	BusinessID      int64   `json:"business_id"`
	ServiceID       int64   `json:"service_id"`
	StaffID         int64   `json:"staff_id"`
	ClientID        *int64  `json:"client_id,omitempty"`
	ClientName      string  `json:"client_name,omitempty"`
	ClientContact   string  `json:"client_contact,omitempty"`
	StartAt         string  `json:"start_at"`
	EndAt           string  `json:"end_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Status          string  `json:"status"`
	Source          string  `json:"source"`
	Price           float64 `json:"price"`
	Notes           *string `json:"notes,omitempty"`
	CancelledAt     *string `json:"cancelled_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// FromServiceBooking конвертирует ответ сервиса в HTTP модель
func FromServiceBooking(b *models.BookingResponse) *BookingResponse {
	resp := &BookingResponse{
		ID:              b.ID,
		BusinessID:      b.BusinessID,
		ServiceID:       b.ServiceID,
		StaffID:         b.StaffID,
		ClientID:        b.ClientID,
		ClientName:      b.ClientName,
		ClientContact:   b.ClientContact,
		StartAt:         b.StartAt.Format(time.RFC3339),
		EndAt:           b.EndAt.Format(time.RFC3339),
		DurationMinutes: b.DurationMinutes,
		Status:          b.Status,
		Source:          b.Source,
		Price:           b.Price,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		at := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &at
	}
	return resp
}

// FromServiceBookingList конвертирует список бронирований
func FromServiceBookingList(list *models.BookingListResponse) []*BookingResponse {
	result := make([]*BookingResponse, 0, len(list.Bookings))
	for _, b := range list.Bookings {
		result = append(result, FromServiceBooking(b))
	}
	return result
}
