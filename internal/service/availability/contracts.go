package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// BookingRepository источник активных бронирований
type BookingRepository interface {
	ListActiveByStaff(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Booking, error)
}

// CatalogClient интерфейс клиента каталога услуг и сотрудников
type CatalogClient interface {
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
	GetStaff(ctx context.Context, staffID int64) (*domain.StaffMember, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
