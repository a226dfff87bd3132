package get_available_slots

import (
	"context"
	"iter"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/cache/slots"
)

// CatalogClient интерфейс клиента CatalogService
type CatalogClient interface {
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
	GetStaff(ctx context.Context, staffID int64) (*domain.StaffMember, error)
}

// SlotCalculator вычисляет свободные слоты
type SlotCalculator interface {
	SlotsFor(
		ctx context.Context,
		service *domain.Service,
		staff *domain.StaffMember,
		day time.Time,
		granularity time.Duration,
	) (iter.Seq[domain.Slot], error)
}

// SlotCache кэш вычисленных слотов
type SlotCache interface {
	Get(ctx context.Context, key slots.Key) ([]domain.Slot, int64, bool, error)
	Set(ctx context.Context, key slots.Key, version int64, slots []domain.Slot) error
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
