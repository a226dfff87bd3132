package availability

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	catalogClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/catalogservice"
)

var tracer = otel.Tracer("github.com/m04kA/SMC-SchedulingService/internal/service/availability")

// Calculator вычисляет свободные слоты и проверяет размещение бронирований.
// Сам по себе ничего не блокирует: результат ComputeSlots носит рекомендательный характер.
type Calculator struct {
	bookingRepo BookingRepository
	catalog     CatalogClient
	logger      Logger
}

// NewCalculator создает новый калькулятор доступности
func NewCalculator(bookingRepo BookingRepository, catalog CatalogClient, logger Logger) *Calculator {
	return &Calculator{
		bookingRepo: bookingRepo,
		catalog:     catalog,
		logger:      logger,
	}
}

// ComputeSlots возвращает свободные слоты услуги у сотрудника на локальную дату day
func (c *Calculator) ComputeSlots(
	ctx context.Context,
	serviceID, staffID int64,
	day time.Time,
	granularity time.Duration,
) (iter.Seq[domain.Slot], error) {
	service, err := c.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, c.mapCatalogError("ComputeSlots", err)
	}

	staff, err := c.catalog.GetStaff(ctx, staffID)
	if err != nil {
		return nil, c.mapCatalogError("ComputeSlots", err)
	}

	return c.SlotsFor(ctx, service, staff, day, granularity)
}

// SlotsFor вычисляет слоты для уже загруженных из каталога услуги и сотрудника
func (c *Calculator) SlotsFor(
	ctx context.Context,
	service *domain.Service,
	staff *domain.StaffMember,
	day time.Time,
	granularity time.Duration,
) (iter.Seq[domain.Slot], error) {
	ctx, span := tracer.Start(ctx, "availability.SlotsFor", trace.WithAttributes(
		attribute.Int64("service.id", service.ID),
		attribute.Int64("staff.id", staff.ID),
		attribute.String("day", day.Format(domain.DateFormat)),
	))
	defer span.End()

	if granularity <= 0 {
		return nil, ErrInvalidGranularity
	}

	loc, err := staff.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	schedule := staff.DaySchedule(day, loc)
	if schedule.IsEmpty() {
		return generateSlots(nil, 0, 0, nil), nil
	}

	from, to := domain.LocalDayBounds(day, loc)
	active, err := c.bookingRepo.ListActiveByStaff(ctx, staff.ID, from, to)
	if err != nil {
		c.logger.Error("SlotsFor: failed to list bookings for staff=%d: %v", staff.ID, err)
		return nil, fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}

	busy := make([]domain.Interval, 0, len(active)+len(schedule.Breaks))
	for _, b := range active {
		busy = append(busy, b.Interval())
	}
	busy = append(busy, schedule.Breaks...)

	return generateSlots(schedule.Work, service.Duration(), granularity, busy), nil
}

// CheckPlacement проверяет, что candidate помещается в рабочее время сотрудника
// и не пересекается с его активными бронированиями, кроме excludeID.
// Чтение идет через ctx, поэтому внутри транзакции видны ее собственные записи.
func (c *Calculator) CheckPlacement(
	ctx context.Context,
	staff *domain.StaffMember,
	candidate domain.Interval,
	excludeID int64,
) error {
	loc, err := staff.Location()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	schedule := staff.DaySchedule(candidate.Start.In(loc), loc)

	active, err := c.bookingRepo.ListActiveByStaff(ctx, staff.ID, candidate.Start, candidate.End)
	if err != nil {
		return fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}

	return checkPlacement(schedule, candidate, active, excludeID)
}

func (c *Calculator) mapCatalogError(op string, err error) error {
	switch {
	case errors.Is(err, catalogClient.ErrServiceNotFound):
		return ErrServiceNotFound
	case errors.Is(err, catalogClient.ErrStaffNotFound):
		return ErrStaffNotFound
	default:
		c.logger.Error("%s: catalog request failed: %v", op, err)
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
}
