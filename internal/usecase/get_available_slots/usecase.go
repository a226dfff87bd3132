package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/cache/slots"
	catalogClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
)

// UseCase use case для получения доступных слотов
type UseCase struct {
	catalog      CatalogClient
	calculator   SlotCalculator
	cache        SlotCache
	metrics      *metrics.Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case. cache и metrics могут быть nil.
func NewUseCase(
	catalog CatalogClient,
	calculator SlotCalculator,
	cache SlotCache,
	metrics *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalog:      catalog,
		calculator:   calculator,
		cache:        cache,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("GetAvailableSlots: business=%d, service=%d, staff=%d, day=%s, step=%d",
		req.BusinessID, req.ServiceID, req.StaffID, req.Day.Format(domain.DateFormat), req.StepMinutes)

	// 2. Получаем услугу
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrUnavailable, err)
	}
	if service.BusinessID != req.BusinessID || !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is not offered by business id=%d", req.ServiceID, req.BusinessID)
		return nil, ErrServiceNotFound
	}

	// 3. Получаем сотрудника с расписанием
	staff, err := uc.catalog.GetStaff(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrStaffNotFound) {
			uc.logger.Warn("GetAvailableSlots: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrUnavailable, err)
	}
	if staff.BusinessID != req.BusinessID || !staff.IsActive {
		uc.logger.Warn("GetAvailableSlots: staff id=%d does not work for business id=%d", req.StaffID, req.BusinessID)
		return nil, ErrStaffNotFound
	}

	loc, err := staff.Location()
	if err != nil {
		uc.logger.Error("GetAvailableSlots: staff id=%d has invalid timezone: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 4. Берем слоты из кэша или вычисляем
	all, cacheState, err := uc.slots(ctx, req, service, staff)
	if err != nil {
		return nil, err
	}

	// 5. Оставляем только слоты, начинающиеся в будущем
	now := uc.timeProvider.Now()
	available := make([]domain.Slot, 0, len(all))
	for _, slot := range all {
		if slot.Start.After(now) {
			available = append(available, slot.In(loc))
		}
	}

	uc.metrics.ObserveSlotsOffered(cacheState, len(available))
	uc.logger.Info("GetAvailableSlots: found %d available slots (cache=%s)", len(available), cacheState)

	return &Response{
		Day:       req.Day,
		ServiceID: req.ServiceID,
		StaffID:   req.StaffID,
		Timezone:  loc.String(),
		Slots:     available,
	}, nil
}

// slots возвращает все слоты дня без фильтрации по текущему времени
func (uc *UseCase) slots(
	ctx context.Context,
	req *Request,
	service *domain.Service,
	staff *domain.StaffMember,
) ([]domain.Slot, string, error) {
	key := slots.Key{
		ServiceID:   service.ID,
		StaffID:     staff.ID,
		Day:         req.Day,
		StepMinutes: req.StepMinutes,
	}

	cacheState := "off"
	var version int64
	if uc.cache != nil {
		cached, v, hit, err := uc.cache.Get(ctx, key)
		switch {
		case err != nil:
			// Кэш недоступен: считаем напрямую
			uc.logger.Warn("GetAvailableSlots: slot cache read failed: %v", err)
			cacheState = "error"
		case hit:
			return cached, "hit", nil
		default:
			version = v
			cacheState = "miss"
		}
	}

	seq, err := uc.calculator.SlotsFor(ctx, service, staff, req.Day, time.Duration(req.StepMinutes)*time.Minute)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to compute slots: %v", err)
		return nil, cacheState, fmt.Errorf("%w: failed to compute slots: %v", ErrUnavailable, err)
	}
	computed := slices.Collect(seq)

	if cacheState == "miss" {
		if err := uc.cache.Set(ctx, key, version, computed); err != nil {
			uc.logger.Warn("GetAvailableSlots: slot cache write failed: %v", err)
		}
	}

	return computed, cacheState, nil
}
