package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// EventType тип события об изменении бронирования
type EventType string

const (
	EventBookingCreated       EventType = "booking.created"
	EventBookingRescheduled   EventType = "booking.rescheduled"
	EventBookingCancelled     EventType = "booking.cancelled"
	EventBookingStatusChanged EventType = "booking.status_changed"
)

// Event сообщение, публикуемое после успешной фиксации изменения
type Event struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"event_type"`
	BookingID  int64     `json:"booking_id"`
	BusinessID int64     `json:"business_id"`
	StaffID    int64     `json:"staff_id"`
	ServiceID  int64     `json:"service_id"`
	ClientID   *int64    `json:"client_id,omitempty"`
	Status     string    `json:"status"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent создает событие по состоянию бронирования
func NewEvent(eventType EventType, b *domain.Booking, occurredAt time.Time) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		BookingID:  b.ID,
		BusinessID: b.BusinessID,
		StaffID:    b.StaffID,
		ServiceID:  b.ServiceID,
		ClientID:   b.Client.ID,
		Status:     string(b.Status),
		StartAt:    b.StartAt,
		EndAt:      b.EndAt(),
		OccurredAt: occurredAt,
	}
}
