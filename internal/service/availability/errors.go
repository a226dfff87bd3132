package availability

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("availability: service not found")

	// ErrStaffNotFound возвращается, когда сотрудник не найден в каталоге
	ErrStaffNotFound = errors.New("availability: staff not found")

	// ErrInvalidGranularity возвращается при неположительном шаге сетки
	ErrInvalidGranularity = errors.New("availability: granularity must be positive")

	// ErrOutsideWorkingHours интервал не помещается в рабочее время или попадает на перерыв
	ErrOutsideWorkingHours = errors.New("availability: outside working hours")

	// ErrSlotOverlap интервал пересекается с активным бронированием
	ErrSlotOverlap = errors.New("availability: overlaps an active booking")

	// ErrCatalogUnavailable каталог не ответил
	ErrCatalogUnavailable = errors.New("availability: catalog unavailable")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("availability: internal error")
)
