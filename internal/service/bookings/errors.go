package bookings

import "errors"

var (
	// ErrNotFound бронирование, услуга или сотрудник не найдены (или бронирование неактивно)
	ErrNotFound = errors.New("bookings: not found")

	// ErrSlotUnavailable интервал пересекается с активным бронированием или выходит за рабочее время
	ErrSlotUnavailable = errors.New("bookings: slot unavailable")

	// ErrInvalidTransition переход статуса запрещен
	ErrInvalidTransition = errors.New("bookings: invalid status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input")

	// ErrUnavailable хранилище или каталог недоступны
	ErrUnavailable = errors.New("bookings: temporarily unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)

// isBusinessError ошибки, которые не имеет смысла повторять
func isBusinessError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidInput)
}

// outcome метка результата операции для метрик
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}
