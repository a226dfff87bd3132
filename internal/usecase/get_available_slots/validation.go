package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateRequest валидирует входные данные запроса и подставляет шаг по умолчанию
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Day.IsZero() {
		return fmt.Errorf("%w: day is required", ErrInvalidInput)
	}

	if req.StepMinutes == 0 {
		req.StepMinutes = domain.DefaultStepMinutes
	}
	if req.StepMinutes < domain.MinStepMinutes || req.StepMinutes > domain.MaxStepMinutes {
		return fmt.Errorf("%w: step must be between %d and %d minutes",
			ErrInvalidInput, domain.MinStepMinutes, domain.MaxStepMinutes)
	}

	return nil
}
