package reschedule_booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStartAt     = "некорректное время начала, ожидается RFC3339"
	msgNotFound           = "активное бронирование не найдено"
	msgSlotUnavailable    = "выбранный временной слот недоступен"
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

// Handle PATCH /booking/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /booking/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /booking/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	newStart, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		h.logger.Warn("PATCH /booking/{id} - Invalid start_at: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartAt)
		return
	}

	result, err := h.service.Reschedule(r.Context(), bookingID, newStart)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrNotFound):
			h.logger.Warn("PATCH /booking/{id} - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrSlotUnavailable):
			h.logger.Warn("PATCH /booking/{id} - Slot unavailable: booking_id=%d, start_at=%s", bookingID, req.StartAt)
			handlers.RespondConflict(w, handlers.KindSlotUnavailable, msgSlotUnavailable)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PATCH /booking/{id} - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, bookings.ErrUnavailable):
			h.logger.Error("PATCH /booking/{id} - Dependency unavailable: %v", err)
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("PATCH /booking/{id} - Failed to reschedule booking: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /booking/{id} - Booking rescheduled successfully: booking_id=%d, start_at=%s",
		bookingID, req.StartAt)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromServiceBooking(result))
}
