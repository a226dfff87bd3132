package bookings

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// validateCreateRequest проверяет входные данные запроса создания
func validateCreateRequest(req *models.CreateBookingRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrInvalidInput)
	}

	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: business_id must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: service_id must be positive", ErrInvalidInput)
	}
	if req.StaffID <= 0 {
		return fmt.Errorf("%w: staff_id must be positive", ErrInvalidInput)
	}
	if req.StartAt.IsZero() {
		return fmt.Errorf("%w: start_at is required", ErrInvalidInput)
	}

	// Клиент должен быть идентифицирован: по ID или по имени
	if req.ClientID != nil && *req.ClientID <= 0 {
		return fmt.Errorf("%w: client_id must be positive", ErrInvalidInput)
	}
	if req.ClientID == nil && strings.TrimSpace(req.ClientName) == "" {
		return fmt.Errorf("%w: client_id or client_name is required", ErrInvalidInput)
	}
	if len(req.ClientName) > domain.MaxClientNameLength {
		return fmt.Errorf("%w: client_name exceeds %d characters", ErrInvalidInput, domain.MaxClientNameLength)
	}
	if len(req.ClientContact) > domain.MaxClientContactLength {
		return fmt.Errorf("%w: client_contact exceeds %d characters", ErrInvalidInput, domain.MaxClientContactLength)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if _, err := domain.ParseBookingSource(req.Source); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return nil
}

// validateListRequest проверяет запрос списка бронирований
func validateListRequest(req *models.ListBookingsRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrInvalidInput)
	}
	if req.StaffID == nil && req.ClientID == nil {
		return fmt.Errorf("%w: staff_id or client_id is required", ErrInvalidInput)
	}
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return fmt.Errorf("%w: period start must be before its end", ErrInvalidInput)
	}
	if req.Status != nil {
		if _, err := domain.ParseBookingStatus(*req.Status); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return nil
}
