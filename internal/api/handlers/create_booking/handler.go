package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStartAt     = "некорректное время начала, ожидается RFC3339"
	msgSlotUnavailable    = "выбранный временной слот недоступен"
	msgNotFound           = "услуга или сотрудник не найдены"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /booking
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /booking - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest()
	if err != nil {
		h.logger.Warn("POST /booking - Invalid start_at: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartAt)
		return
	}

	result, err := h.service.Create(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrSlotUnavailable):
			h.logger.Warn("POST /booking - Slot unavailable: staff_id=%d, start_at=%s", req.StaffID, req.StartAt)
			handlers.RespondConflict(w, handlers.KindSlotUnavailable, msgSlotUnavailable)

		case errors.Is(err, bookings.ErrNotFound):
			h.logger.Warn("POST /booking - Not found: business_id=%d, service_id=%d, staff_id=%d",
				req.BusinessID, req.ServiceID, req.StaffID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("POST /booking - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, bookings.ErrUnavailable):
			h.logger.Error("POST /booking - Dependency unavailable: %v", err)
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("POST /booking - Failed to create booking: staff_id=%d, error=%v", req.StaffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /booking - Booking created successfully: booking_id=%d, staff_id=%d",
		result.ID, result.StaffID)
	handlers.RespondJSON(w, http.StatusCreated, handlers.FromServiceBooking(result))
}
