package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

// AvailableSlotsRequest HTTP request model
type AvailableSlotsRequest struct {
	BusinessID  int64  `json:"business_id"`
	ServiceID   int64  `json:"service_id"`
	StaffID     int64  `json:"staff_id"`
	Day         string `json:"day"` // "2026-03-02"
	StepMinutes int    `json:"step_minutes,omitempty"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *AvailableSlotsRequest) ToUseCaseRequest() (*getAvailableSlots.Request, error) {
	day, err := time.Parse(domain.DateFormat, r.Day)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		BusinessID:  r.BusinessID,
		ServiceID:   r.ServiceID,
		StaffID:     r.StaffID,
		Day:         day,
		StepMinutes: r.StepMinutes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) []AvailableSlot {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartAt: slot.Start.Format(time.RFC3339),
			EndAt:   slot.End.Format(time.RFC3339),
		}
	}
	return slots
}
