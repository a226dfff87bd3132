package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifications"
)

// BookingRepository интерфейс хранилища бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Put(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	LockStaff(ctx context.Context, staffID int64) error
	ListByFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// PlacementChecker проверяет, что интервал можно занять
type PlacementChecker interface {
	CheckPlacement(ctx context.Context, staff *domain.StaffMember, candidate domain.Interval, excludeID int64) error
}

// CatalogClient интерфейс клиента CatalogService
type CatalogClient interface {
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
	GetStaff(ctx context.Context, staffID int64) (*domain.StaffMember, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// StaffLocker внутрипроцессная блокировка по сотруднику
type StaffLocker interface {
	Lock(staffID int64) (unlock func())
}

// Notifier публикует события об изменениях
type Notifier interface {
	Publish(ctx context.Context, event notifications.Event) error
}

// SlotCache кэш свободных слотов
type SlotCache interface {
	Invalidate(ctx context.Context, staffID int64, day time.Time) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
