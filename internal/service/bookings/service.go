package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	catalogClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifications"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

const (
	defaultMaxTries      = 2
	defaultNotifyTimeout = 5 * time.Second

	invalidateTimeout = 2 * time.Second
)

var tracer = otel.Tracer("github.com/m04kA/SMC-SchedulingService/internal/service/bookings")

// Service сервис бронирований. Все изменения одного сотрудника выполняются
// последовательно: внутрипроцессная блокировка плюс advisory-блокировка в транзакции.
type Service struct {
	bookingRepo BookingRepository
	placement   PlacementChecker
	catalog     CatalogClient
	txManager   TransactionManager
	locker      StaffLocker
	logger      Logger

	notifier      Notifier
	slotCache     SlotCache
	metrics       *metrics.Metrics
	timeProvider  TimeProvider
	newBackOff    func() backoff.BackOff
	maxTries      uint
	notifyTimeout time.Duration

	inflight sync.WaitGroup
}

// Option настройка сервиса
type Option func(*Service)

// WithNotifier задает издателя событий
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithSlotCache задает кэш слотов, который сбрасывается после изменений
func WithSlotCache(c SlotCache) Option {
	return func(s *Service) { s.slotCache = c }
}

// WithMetrics задает коллектор метрик
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTimeProvider подменяет источник времени
func WithTimeProvider(tp TimeProvider) Option {
	return func(s *Service) { s.timeProvider = tp }
}

// WithRetry задает стратегию повтора транзакции и общее число попыток
func WithRetry(newBackOff func() backoff.BackOff, maxTries uint) Option {
	return func(s *Service) {
		s.newBackOff = newBackOff
		if maxTries > 0 {
			s.maxTries = maxTries
		}
	}
}

// WithNotifyTimeout задает таймаут публикации события
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	placement PlacementChecker,
	catalog CatalogClient,
	txManager TransactionManager,
	locker StaffLocker,
	logger Logger,
	opts ...Option,
) *Service {
	s := &Service{
		bookingRepo:   bookingRepo,
		placement:     placement,
		catalog:       catalog,
		txManager:     txManager,
		locker:        locker,
		logger:        logger,
		notifier:      notifications.NopPublisher{},
		timeProvider:  &RealTimeProvider{},
		newBackOff:    defaultBackOff,
		maxTries:      defaultMaxTries,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return b
}

// Create создает бронирование в статусе pending.
// Данные каталога загружаются до входа в критическую секцию.
func (s *Service) Create(ctx context.Context, req *models.CreateBookingRequest) (resp *models.BookingResponse, err error) {
	defer func() { s.metrics.ObserveBookingOperation("create", outcome(err)) }()

	// 1. Валидация входных данных
	if err := validateCreateRequest(req); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}
	source, _ := domain.ParseBookingSource(req.Source)

	s.logger.Info("Create: business=%d, service=%d, staff=%d, start=%s",
		req.BusinessID, req.ServiceID, req.StaffID, req.StartAt.Format(time.RFC3339))

	// 2. Получаем услугу и сотрудника из каталога
	service, err := s.loadService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	staff, err := s.loadStaff(ctx, req.BusinessID, req.StaffID)
	if err != nil {
		return nil, err
	}

	loc, err := staff.Location()
	if err != nil {
		s.logger.Error("Create: staff=%d has invalid timezone: %v", staff.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 3. Бронировать прошедшее время нельзя
	if !req.StartAt.After(s.timeProvider.Now()) {
		s.logger.Warn("Create: start=%s is in the past", req.StartAt.Format(time.RFC3339))
		return nil, fmt.Errorf("%w: start_at must be in the future", ErrInvalidInput)
	}

	// Денормализуем длительность, цену и часовой пояс
	booking := &domain.Booking{
		BusinessID: req.BusinessID,
		ServiceID:  service.ID,
		StaffID:    staff.ID,
		Client: domain.Client{
			ID:      req.ClientID,
			Name:    req.ClientName,
			Contact: req.ClientContact,
		},
		StartAt:         req.StartAt.In(loc),
		DurationMinutes: service.DurationMinutes,
		Timezone:        loc.String(),
		Status:          domain.StatusPending,
		Source:          source,
		Price:           service.Price,
		Notes:           req.Notes,
	}

	// Бронирование начинается и заканчивается в одни локальные сутки
	if !booking.Interval().WithinLocalDay(loc) {
		s.logger.Warn("Create: booking at %s crosses local midnight", req.StartAt.Format(time.RFC3339))
		return nil, fmt.Errorf("%w: booking must start and end on the same local day", ErrInvalidInput)
	}

	// 4. Проверка и запись в одной критической секции
	created, err := s.inCriticalSection(ctx, "create", staff.ID, func(txCtx context.Context) (*domain.Booking, error) {
		if err := s.checkPlacement(txCtx, staff, booking.Interval(), 0); err != nil {
			return nil, err
		}
		return s.put(txCtx, booking)
	})
	if err != nil {
		s.logger.Warn("Create: staff=%d, start=%s rejected: %v", staff.ID, req.StartAt.Format(time.RFC3339), err)
		return nil, err
	}

	s.logger.Info("Create: successfully created booking id=%d", created.ID)
	s.afterCommit(ctx, notifications.EventBookingCreated, created)

	return models.FromDomainBooking(created), nil
}

// Reschedule переносит активное бронирование на новое время с той же длительностью.
// ID и статус сохраняются, само бронирование не считается пересечением.
func (s *Service) Reschedule(ctx context.Context, bookingID int64, newStart time.Time) (resp *models.BookingResponse, err error) {
	defer func() { s.metrics.ObserveBookingOperation("reschedule", outcome(err)) }()

	s.logger.Info("Reschedule: booking id=%d, new start=%s", bookingID, newStart.Format(time.RFC3339))

	if newStart.IsZero() {
		return nil, fmt.Errorf("%w: start_at is required", ErrInvalidInput)
	}
	if !newStart.After(s.timeProvider.Now()) {
		s.logger.Warn("Reschedule: booking id=%d, new start=%s is in the past", bookingID, newStart.Format(time.RFC3339))
		return nil, fmt.Errorf("%w: start_at must be in the future", ErrInvalidInput)
	}

	// 1. Читаем бронирование, чтобы узнать сотрудника
	current, err := s.getActive(ctx, "Reschedule", bookingID)
	if err != nil {
		return nil, err
	}

	// 2. Рабочее время сотрудника загружаем до блокировки
	staff, err := s.loadStaff(ctx, current.BusinessID, current.StaffID)
	if err != nil {
		return nil, err
	}

	// Дневные границы и рабочее время считаются в одном часовом поясе сотрудника
	loc, err := staff.Location()
	if err != nil {
		s.logger.Error("Reschedule: staff=%d has invalid timezone: %v", staff.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	var previous time.Time

	// 3. Перечитываем под блокировкой сотрудника и переносим
	updated, err := s.inCriticalSection(ctx, "reschedule", current.StaffID, func(txCtx context.Context) (*domain.Booking, error) {
		b, err := s.getActive(txCtx, "Reschedule", bookingID)
		if err != nil {
			return nil, err
		}

		previous = b.StartAt
		b.StartAt = newStart.In(loc)
		b.Timezone = loc.String()
		if !b.Interval().WithinLocalDay(loc) {
			return nil, fmt.Errorf("%w: booking must start and end on the same local day", ErrInvalidInput)
		}

		if err := s.checkPlacement(txCtx, staff, b.Interval(), b.ID); err != nil {
			return nil, err
		}
		return s.put(txCtx, b)
	})
	if err != nil {
		s.logger.Warn("Reschedule: booking id=%d rejected: %v", bookingID, err)
		return nil, err
	}

	s.logger.Info("Reschedule: successfully moved booking id=%d from %s to %s",
		bookingID, previous.Format(time.RFC3339), updated.StartAt.Format(time.RFC3339))
	s.afterCommit(ctx, notifications.EventBookingRescheduled, updated, previous)

	return models.FromDomainBooking(updated), nil
}

// Cancel отменяет бронирование. Повторная отмена возвращает бронирование без изменений.
func (s *Service) Cancel(ctx context.Context, bookingID int64) (resp *models.BookingResponse, err error) {
	defer func() { s.metrics.ObserveBookingOperation("cancel", outcome(err)) }()

	s.logger.Info("Cancel: cancelling booking id=%d", bookingID)

	current, err := s.get(ctx, "Cancel", bookingID)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled() {
		s.logger.Info("Cancel: booking id=%d is already cancelled", bookingID)
		return models.FromDomainBooking(current), nil
	}

	changed := false
	updated, err := s.inCriticalSection(ctx, "cancel", current.StaffID, func(txCtx context.Context) (*domain.Booking, error) {
		b, err := s.get(txCtx, "Cancel", bookingID)
		if err != nil {
			return nil, err
		}

		// Параллельная отмена уже успела зафиксироваться
		if b.IsCancelled() {
			changed = false
			return b, nil
		}

		if !b.Status.CanTransitionTo(domain.StatusCancelled) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, domain.StatusCancelled)
		}

		b.Status = domain.StatusCancelled
		b.CancelledAt = ptr.Ptr(s.timeProvider.Now())

		changed = true
		return s.put(txCtx, b)
	})
	if err != nil {
		s.logger.Warn("Cancel: booking id=%d rejected: %v", bookingID, err)
		return nil, err
	}

	if changed {
		s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
		s.afterCommit(ctx, notifications.EventBookingCancelled, updated)
	}

	return models.FromDomainBooking(updated), nil
}

// UpdateStatus переводит бронирование в новый статус по таблице переходов.
// Отмена выполняется с семантикой Cancel.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, rawStatus string) (resp *models.BookingResponse, err error) {
	status, err := domain.ParseBookingStatus(rawStatus)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", rawStatus, bookingID)
		s.metrics.ObserveBookingOperation("update_status", outcome(ErrInvalidInput))
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if status == domain.StatusCancelled {
		return s.Cancel(ctx, bookingID)
	}

	defer func() { s.metrics.ObserveBookingOperation("update_status", outcome(err)) }()

	s.logger.Info("UpdateStatus: booking id=%d to status=%s", bookingID, status)

	current, err := s.get(ctx, "UpdateStatus", bookingID)
	if err != nil {
		return nil, err
	}

	updated, err := s.inCriticalSection(ctx, "update_status", current.StaffID, func(txCtx context.Context) (*domain.Booking, error) {
		b, err := s.get(txCtx, "UpdateStatus", bookingID)
		if err != nil {
			return nil, err
		}

		if !b.Status.CanTransitionTo(status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, status)
		}

		b.Status = status
		return s.put(txCtx, b)
	})
	if err != nil {
		s.logger.Warn("UpdateStatus: booking id=%d rejected: %v", bookingID, err)
		return nil, err
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, status)
	s.afterCommit(ctx, notifications.EventBookingStatusChanged, updated)

	return models.FromDomainBooking(updated), nil
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	b, err := s.get(ctx, "GetByID", bookingID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(b), nil
}

// ListBookings возвращает бронирования сотрудника или клиента, отсортированные по времени начала
func (s *Service) ListBookings(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	if err := validateListRequest(req); err != nil {
		s.logger.Warn("ListBookings: validation failed: %v", err)
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.ListByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListBookings: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListBookings - repository error: %v", ErrUnavailable, err)
	}

	s.logger.Info("ListBookings: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// Shutdown ждет завершения публикации событий или отмены ctx
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Вспомогательные методы

// inCriticalSection выполняет fn под блокировкой сотрудника в транзакции.
// Ошибки хранилища повторяются, бизнес-отказы возвращаются сразу.
func (s *Service) inCriticalSection(
	ctx context.Context,
	op string,
	staffID int64,
	fn func(txCtx context.Context) (*domain.Booking, error),
) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings."+op, trace.WithAttributes(attribute.Int64("staff.id", staffID)))
	defer span.End()

	unlock := s.locker.Lock(staffID)
	defer unlock()

	attempt := 0
	operation := func() (*domain.Booking, error) {
		attempt++

		var result *domain.Booking
		err := s.txManager.Do(ctx, func(txCtx context.Context) error {
			if err := s.bookingRepo.LockStaff(txCtx, staffID); err != nil {
				return err
			}

			b, err := fn(txCtx)
			if err != nil {
				return err
			}
			result = b
			return nil
		})
		if err == nil {
			return result, nil
		}
		if isBusinessError(err) {
			return nil, backoff.Permanent(err)
		}

		s.logger.Warn("%s: attempt %d for staff=%d failed: %v", op, attempt, staffID, err)
		return nil, err
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(s.maxTries),
	)
	if err != nil {
		span.RecordError(err)
		if isBusinessError(err) {
			return nil, err
		}
		s.logger.Error("%s: giving up for staff=%d after %d attempts: %v", op, staffID, attempt, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return result, nil
}

func (s *Service) checkPlacement(ctx context.Context, staff *domain.StaffMember, candidate domain.Interval, excludeID int64) error {
	err := s.placement.CheckPlacement(ctx, staff, candidate, excludeID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, availability.ErrSlotOverlap), errors.Is(err, availability.ErrOutsideWorkingHours):
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	default:
		return err
	}
}

func (s *Service) put(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	saved, err := s.bookingRepo.Put(ctx, b)
	switch {
	case err == nil:
		return saved, nil
	case errors.Is(err, bookingRepo.ErrOverlap):
		return nil, fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (s *Service) get(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, bookingID)
			return nil, ErrNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrUnavailable, op, err)
	}
	return b, nil
}

func (s *Service) getActive(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	b, err := s.get(ctx, op, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsActive() {
		s.logger.Warn("%s: booking id=%d is not active, status=%s", op, bookingID, b.Status)
		return nil, fmt.Errorf("%w: booking id=%d is %s", ErrNotFound, bookingID, b.Status)
	}
	return b, nil
}

func (s *Service) loadService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error) {
	service, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			s.logger.Warn("loadService: service id=%d not found", serviceID)
			return nil, fmt.Errorf("%w: service id=%d", ErrNotFound, serviceID)
		}
		s.logger.Error("loadService: failed to get service id=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrUnavailable, err)
	}

	if service.BusinessID != businessID || !service.IsActive {
		s.logger.Warn("loadService: service id=%d is not offered by business id=%d", serviceID, businessID)
		return nil, fmt.Errorf("%w: service id=%d", ErrNotFound, serviceID)
	}
	return service, nil
}

func (s *Service) loadStaff(ctx context.Context, businessID, staffID int64) (*domain.StaffMember, error) {
	staff, err := s.catalog.GetStaff(ctx, staffID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrStaffNotFound) {
			s.logger.Warn("loadStaff: staff id=%d not found", staffID)
			return nil, fmt.Errorf("%w: staff id=%d", ErrNotFound, staffID)
		}
		s.logger.Error("loadStaff: failed to get staff id=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrUnavailable, err)
	}

	if staff.BusinessID != businessID || !staff.IsActive {
		s.logger.Warn("loadStaff: staff id=%d does not work for business id=%d", staffID, businessID)
		return nil, fmt.Errorf("%w: staff id=%d", ErrNotFound, staffID)
	}
	return staff, nil
}

// afterCommit сбрасывает кэш слотов затронутых дней и асинхронно публикует событие.
// Ошибки здесь только логируются: изменение уже зафиксировано.
func (s *Service) afterCommit(ctx context.Context, eventType notifications.EventType, b *domain.Booking, previousStarts ...time.Time) {
	if s.slotCache != nil {
		loc := b.Location()
		days := map[string]time.Time{}
		for _, at := range append(previousStarts, b.StartAt) {
			local := at.In(loc)
			days[local.Format(domain.DateFormat)] = local
		}

		// Отмена запроса клиентом не должна оставить в кэше устаревшие слоты
		invalidateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
		defer cancel()

		for _, day := range days {
			if err := s.slotCache.Invalidate(invalidateCtx, b.StaffID, day); err != nil {
				s.logger.Error("afterCommit: failed to invalidate slots for staff=%d, day=%s: %v",
					b.StaffID, day.Format(domain.DateFormat), err)
			}
		}
	}

	event := notifications.NewEvent(eventType, b, s.timeProvider.Now())
	notifyCtx := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(notifyCtx, s.notifyTimeout)
		defer cancel()

		if err := s.notifier.Publish(ctx, event); err != nil {
			s.logger.Error("afterCommit: failed to publish %s for booking id=%d: %v", eventType, b.ID, err)
		}
	}()
}
