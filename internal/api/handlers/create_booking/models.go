package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BusinessID    int64   `json:"business_id"`
	ServiceID     int64   `json:"service_id"`
	StaffID       int64   `json:"staff_id"`
	ClientID      *int64  `json:"client_id,omitempty"`
	ClientName    string  `json:"client_name,omitempty"`
	ClientContact string  `json:"client_contact,omitempty"`
	StartAt       string  `json:"start_at"` // RFC3339, "2026-03-02T10:00:00+03:00"
	Notes         *string `json:"notes,omitempty"`
	Source        string  `json:"source,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateBookingRequest) ToServiceRequest() (*models.CreateBookingRequest, error) {
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, err
	}

	return &models.CreateBookingRequest{
		BusinessID:    r.BusinessID,
		ServiceID:     r.ServiceID,
		StaffID:       r.StaffID,
		ClientID:      r.ClientID,
		ClientName:    r.ClientName,
		ClientContact: r.ClientContact,
		StartAt:       startAt,
		Notes:         r.Notes,
		Source:        r.Source,
	}, nil
}
