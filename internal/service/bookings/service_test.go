package bookings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	catalogClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifications"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/keylock"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

const (
	businessID = int64(10)
	serviceID  = int64(1)
	staffID    = int64(7)
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeCatalog struct {
	mu       sync.Mutex
	services map[int64]*domain.Service
	staff    map[int64]*domain.StaffMember
	err      error
}

func (f *fakeCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.services[id]
	if !ok {
		return nil, catalogClient.ErrServiceNotFound
	}
	return s, nil
}

func (f *fakeCatalog) GetStaff(_ context.Context, id int64) (*domain.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.staff[id]
	if !ok {
		return nil, catalogClient.ErrStaffNotFound
	}
	return s, nil
}

type recordingNotifier struct {
	events chan notifications.Event
	err    error
}

func newRecordingNotifier(err error) *recordingNotifier {
	return &recordingNotifier{events: make(chan notifications.Event, 100), err: err}
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event) error {
	n.events <- event
	return n.err
}

func (n *recordingNotifier) next(t *testing.T) notifications.Event {
	t.Helper()
	select {
	case e := <-n.events:
		return e
	case <-time.After(time.Second):
		require.Fail(t, "no event published")
		return notifications.Event{}
	}
}

type recordingCache struct {
	mu      sync.Mutex
	days    []string
	ctxErrs []error
}

func (c *recordingCache) Invalidate(ctx context.Context, staffID int64, day time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days = append(c.days, day.Format(domain.DateFormat))
	c.ctxErrs = append(c.ctxErrs, ctx.Err())
	return ctx.Err()
}

// cancelAfterPutRepository отменяет контекст запроса сразу после записи,
// как при обрыве соединения клиента после коммита
type cancelAfterPutRepository struct {
	*bookingRepo.MemoryRepository
	cancel context.CancelFunc
}

func (r *cancelAfterPutRepository) Put(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	stored, err := r.MemoryRepository.Put(ctx, b)
	if err == nil {
		r.cancel()
	}
	return stored, err
}

// flakyRepository отказывает в записи заданное число раз
type flakyRepository struct {
	*bookingRepo.MemoryRepository
	failures atomic.Int32
	puts     atomic.Int32
}

func (r *flakyRepository) Put(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.puts.Add(1)
	if r.failures.Add(-1) >= 0 {
		return nil, errors.New("connection reset by peer")
	}
	return r.MemoryRepository.Put(ctx, b)
}

type env struct {
	svc      *Service
	repo     BookingRepository
	catalog  *fakeCatalog
	notifier *recordingNotifier
	cache    *recordingCache
	loc      *time.Location
}

func newEnv(t *testing.T, repo interface {
	BookingRepository
	availability.BookingRepository
}, opts ...Option) *env {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	catalog := &fakeCatalog{
		services: map[int64]*domain.Service{
			serviceID: {ID: serviceID, BusinessID: businessID, Name: "Haircut", DurationMinutes: 60, Price: 1500, IsActive: true},
			2:         {ID: 2, BusinessID: 99, DurationMinutes: 30, IsActive: true},
			3:         {ID: 3, BusinessID: businessID, DurationMinutes: 30, IsActive: false},
		},
		staff: map[int64]*domain.StaffMember{
			staffID: {
				ID:         staffID,
				BusinessID: businessID,
				Timezone:   "Europe/Moscow",
				IsActive:   true,
				Weekly: map[time.Weekday][]domain.TimeRange{
					time.Monday:  {{Start: "09:00", End: "13:00"}},
					time.Tuesday: {{Start: "09:00", End: "13:00"}},
				},
			},
		},
	}

	notifier := newRecordingNotifier(nil)
	cache := &recordingCache{}
	log := logger.NewDiscard()

	defaults := []Option{
		WithNotifier(notifier),
		WithSlotCache(cache),
		WithTimeProvider(fixedTime{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}),
		WithRetry(func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }, 2),
	}

	svc := NewService(
		repo,
		availability.NewCalculator(repo, catalog, log),
		catalog,
		txmanager.NopManager{},
		keylock.New[int64](),
		log,
		append(defaults, opts...)...,
	)

	return &env{svc: svc, repo: repo, catalog: catalog, notifier: notifier, cache: cache, loc: loc}
}

func (e *env) at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, e.loc)
}

func (e *env) createReq(start time.Time) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		BusinessID: businessID,
		ServiceID:  serviceID,
		StaffID:    staffID,
		ClientName: "Ivan",
		StartAt:    start,
	}
}

func TestCreate_Success(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())

	resp, err := e.svc.Create(context.Background(), e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "direct", resp.Source)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.InDelta(t, 1500.0, resp.Price, 0.001)
	assert.True(t, e.at(2, 11, 0).Equal(resp.EndAt))
	assert.Equal(t, "Europe/Moscow", resp.StartAt.Location().String())

	event := e.notifier.next(t)
	assert.Equal(t, notifications.EventBookingCreated, event.Type)
	assert.Equal(t, resp.ID, event.BookingID)

	assert.Equal(t, []string{"2026-03-02"}, e.cache.days)
}

func TestCreate_Rejections(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())
	ctx := context.Background()

	_, err := e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(r *models.CreateBookingRequest)
		want   error
	}{
		{name: "overlap", mutate: func(r *models.CreateBookingRequest) { r.StartAt = e.at(2, 10, 15) }, want: ErrSlotUnavailable},
		{name: "before opening", mutate: func(r *models.CreateBookingRequest) { r.StartAt = e.at(2, 8, 30) }, want: ErrSlotUnavailable},
		{name: "past closing", mutate: func(r *models.CreateBookingRequest) { r.StartAt = e.at(2, 12, 30) }, want: ErrSlotUnavailable},
		{name: "day without hours", mutate: func(r *models.CreateBookingRequest) { r.StartAt = e.at(4, 10, 0) }, want: ErrSlotUnavailable},
		{name: "unknown service", mutate: func(r *models.CreateBookingRequest) { r.ServiceID = 404 }, want: ErrNotFound},
		{name: "service of another business", mutate: func(r *models.CreateBookingRequest) { r.ServiceID = 2 }, want: ErrNotFound},
		{name: "inactive service", mutate: func(r *models.CreateBookingRequest) { r.ServiceID = 3 }, want: ErrNotFound},
		{name: "unknown staff", mutate: func(r *models.CreateBookingRequest) { r.StaffID = 404 }, want: ErrNotFound},
		{name: "crosses midnight", mutate: func(r *models.CreateBookingRequest) { r.StartAt = e.at(2, 23, 30) }, want: ErrInvalidInput},
		{name: "in the past", mutate: func(r *models.CreateBookingRequest) { r.StartAt = e.at(1, 10, 0) }, want: ErrInvalidInput},
		{name: "no client", mutate: func(r *models.CreateBookingRequest) { r.ClientName = "" }, want: ErrInvalidInput},
		{name: "bad source", mutate: func(r *models.CreateBookingRequest) { r.Source = "email" }, want: ErrInvalidInput},
		{name: "zero business", mutate: func(r *models.CreateBookingRequest) { r.BusinessID = 0 }, want: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := e.createReq(e.at(2, 11, 0))
			tt.mutate(req)

			_, err := e.svc.Create(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreate_CatalogUnavailable(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())
	e.catalog.err = errors.New("dial tcp: connection refused")

	_, err := e.svc.Create(context.Background(), e.createReq(e.at(2, 10, 0)))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreate_ConcurrentSameSlot(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())
	ctx := context.Background()

	const workers = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Половина запросов частично пересекается с 10:00
			start := e.at(2, 10, 0)
			if i%2 == 1 {
				start = e.at(2, 10, 30)
			}
			_, err := e.svc.Create(ctx, e.createReq(start))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrSlotUnavailable):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())

	active, err := e.repo.ListByFilter(ctx, domain.BookingsFilter{StaffID: ptr.Ptr(staffID)})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestConcurrentPlacement_ExactlyOneWins(t *testing.T) {
	tests := []struct {
		name string
		// setup создает исходные бронирования и возвращает их ID
		setup func(t *testing.T, e *env) []int64
		// calls конкурирующие вызовы за интервал 11:00-12:00
		calls func(e *env, ids []int64) []func(ctx context.Context) error
	}{
		{
			name: "Перенос против создания",
			setup: func(t *testing.T, e *env) []int64 {
				b, err := e.svc.Create(context.Background(), e.createReq(e.at(2, 9, 0)))
				require.NoError(t, err)
				return []int64{b.ID}
			},
			calls: func(e *env, ids []int64) []func(ctx context.Context) error {
				return []func(ctx context.Context) error{
					func(ctx context.Context) error {
						_, err := e.svc.Reschedule(ctx, ids[0], e.at(2, 11, 0))
						return err
					},
					func(ctx context.Context) error {
						_, err := e.svc.Create(ctx, e.createReq(e.at(2, 11, 30)))
						return err
					},
				}
			},
		},
		{
			name: "Перенос против переноса",
			setup: func(t *testing.T, e *env) []int64 {
				first, err := e.svc.Create(context.Background(), e.createReq(e.at(2, 9, 0)))
				require.NoError(t, err)
				second, err := e.svc.Create(context.Background(), e.createReq(e.at(2, 10, 0)))
				require.NoError(t, err)
				return []int64{first.ID, second.ID}
			},
			calls: func(e *env, ids []int64) []func(ctx context.Context) error {
				return []func(ctx context.Context) error{
					func(ctx context.Context) error {
						_, err := e.svc.Reschedule(ctx, ids[0], e.at(2, 11, 0))
						return err
					},
					func(ctx context.Context) error {
						_, err := e.svc.Reschedule(ctx, ids[1], e.at(2, 11, 30))
						return err
					},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				e := newEnv(t, bookingRepo.NewMemoryRepository())
				ids := tt.setup(t, e)
				calls := tt.calls(e, ids)

				var (
					wg        sync.WaitGroup
					start     = make(chan struct{})
					successes atomic.Int32
					conflicts atomic.Int32
				)
				for _, call := range calls {
					wg.Add(1)
					go func(call func(ctx context.Context) error) {
						defer wg.Done()
						<-start
						err := call(context.Background())
						switch {
						case err == nil:
							successes.Add(1)
						case errors.Is(err, ErrSlotUnavailable):
							conflicts.Add(1)
						default:
							t.Errorf("unexpected error: %v", err)
						}
					}(call)
				}
				close(start)
				wg.Wait()

				require.Equal(t, int32(1), successes.Load())
				require.Equal(t, int32(len(calls)-1), conflicts.Load())

				active, err := e.repo.ListByFilter(context.Background(), domain.BookingsFilter{StaffID: ptr.Ptr(staffID)})
				require.NoError(t, err)
				for a := range active {
					for b := a + 1; b < len(active); b++ {
						require.False(t, active[a].Interval().Overlaps(active[b].Interval()),
							"bookings %d and %d overlap", active[a].ID, active[b].ID)
					}
				}
			}
		})
	}
}

func TestCreate_InvalidatesCacheAfterClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &cancelAfterPutRepository{MemoryRepository: bookingRepo.NewMemoryRepository(), cancel: cancel}
	e := newEnv(t, repo)

	resp, err := e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	assert.NotZero(t, resp.ID)
	assert.Equal(t, []string{"2026-03-02"}, e.cache.days)
	assert.Equal(t, []error{nil}, e.cache.ctxErrs)
}

func TestReschedule_UsesStaffTimezone(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())
	ctx := context.Background()

	created, err := e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)

	// Сотрудник переехал в UTC и работает по вечерам
	e.catalog.mu.Lock()
	e.catalog.staff[staffID].Timezone = "UTC"
	e.catalog.staff[staffID].Weekly = map[time.Weekday][]domain.TimeRange{
		time.Monday: {{Start: "20:00", End: "23:00"}},
	}
	e.catalog.mu.Unlock()

	// 20:30-21:30 UTC это 23:30-00:30 по Москве, но в поясе сотрудника это один день
	moved, err := e.svc.Reschedule(ctx, created.ID, time.Date(2026, 3, 2, 20, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "UTC", moved.StartAt.Location().String())
	assert.True(t, time.Date(2026, 3, 2, 21, 30, 0, 0, time.UTC).Equal(moved.EndAt))

	stored, err := e.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "UTC", stored.StartAt.Location().String())
}

func TestReschedule(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())
	ctx := context.Background()

	first, err := e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)
	other, err := e.svc.Create(ctx, e.createReq(e.at(2, 12, 0)))
	require.NoError(t, err)

	// Пересечение с собственным старым интервалом допустимо
	moved, err := e.svc.Reschedule(ctx, first.ID, e.at(2, 10, 30))
	require.NoError(t, err)
	assert.Equal(t, first.ID, moved.ID)
	assert.Equal(t, "pending", moved.Status)
	assert.Equal(t, 60, moved.DurationMinutes)
	assert.True(t, e.at(2, 11, 30).Equal(moved.EndAt))

	_, err = e.svc.Reschedule(ctx, first.ID, e.at(2, 11, 30))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = e.svc.Reschedule(ctx, 404, e.at(2, 9, 0))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.svc.Reschedule(ctx, first.ID, e.at(1, 9, 0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.Cancel(ctx, other.ID)
	require.NoError(t, err)
	_, err = e.svc.Reschedule(ctx, other.ID, e.at(2, 9, 0))
	assert.ErrorIs(t, err, ErrNotFound)

	// Перенос на другой день сбрасывает кэш обоих дней
	e.cache.days = nil
	_, err = e.svc.Reschedule(ctx, first.ID, e.at(3, 9, 0))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2026-03-02", "2026-03-03"}, e.cache.days)
}

func TestCancel_IdempotentAndFreesCapacity(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())
	ctx := context.Background()

	created, err := e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)
	e.notifier.next(t)

	cancelled, err := e.svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, notifications.EventBookingCancelled, e.notifier.next(t).Type)

	again, err := e.svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", again.Status)
	assert.Equal(t, cancelled.CancelledAt, again.CancelledAt)

	select {
	case ev := <-e.notifier.events:
		t.Fatalf("unexpected event on repeated cancel: %s", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}

	_, err = e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	assert.NoError(t, err, "cancelled booking must free the slot")

	_, err = e.svc.Cancel(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())
	ctx := context.Background()

	created, err := e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)

	_, err = e.svc.UpdateStatus(ctx, created.ID, "no_show")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.svc.UpdateStatus(ctx, created.ID, "in_progress")
	assert.ErrorIs(t, err, ErrInvalidInput)

	resp, err := e.svc.UpdateStatus(ctx, created.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)

	resp, err = e.svc.UpdateStatus(ctx, created.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)

	resp, err = e.svc.UpdateStatus(ctx, created.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)

	// Завершенное бронирование не блокирует время
	_, err = e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	assert.NoError(t, err)

	_, err = e.svc.UpdateStatus(ctx, created.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.svc.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_CancelDelegates(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())
	ctx := context.Background()

	created, err := e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)

	resp, err := e.svc.UpdateStatus(ctx, created.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)

	resp, err = e.svc.UpdateStatus(ctx, created.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
}

func TestCreate_RetriesTransientStoreFailure(t *testing.T) {
	repo := &flakyRepository{MemoryRepository: bookingRepo.NewMemoryRepository()}
	repo.failures.Store(1)
	e := newEnv(t, repo)

	resp, err := e.svc.Create(context.Background(), e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, int32(2), repo.puts.Load())
}

func TestCreate_UnavailableAfterRetryBudget(t *testing.T) {
	repo := &flakyRepository{MemoryRepository: bookingRepo.NewMemoryRepository()}
	repo.failures.Store(5)
	e := newEnv(t, repo)

	_, err := e.svc.Create(context.Background(), e.createReq(e.at(2, 10, 0)))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), repo.puts.Load())

	all, err := repo.ListByFilter(context.Background(), domain.BookingsFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreate_BusinessRejectionIsNotRetried(t *testing.T) {
	repo := &flakyRepository{MemoryRepository: bookingRepo.NewMemoryRepository()}
	e := newEnv(t, repo)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)
	puts := repo.puts.Load()

	_, err = e.svc.Create(ctx, e.createReq(e.at(2, 10, 30)))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, puts, repo.puts.Load())
}

func TestCreate_NotifierFailureDoesNotRollBack(t *testing.T) {
	notifier := newRecordingNotifier(errors.New("broker down"))
	e := newEnv(t, bookingRepo.NewMemoryRepository(), WithNotifier(notifier))
	ctx := context.Background()

	resp, err := e.svc.Create(ctx, e.createReq(e.at(2, 10, 0)))
	require.NoError(t, err)
	notifier.next(t)

	require.NoError(t, e.svc.Shutdown(ctx))

	stored, err := e.svc.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", stored.Status)
}

func TestListBookings(t *testing.T) {
	e := newEnv(t, bookingRepo.NewMemoryRepository())
	ctx := context.Background()

	req := e.createReq(e.at(2, 11, 0))
	req.ClientID = ptr.Ptr(int64(55))
	second, err := e.svc.Create(ctx, req)
	require.NoError(t, err)
	first, err := e.svc.Create(ctx, e.createReq(e.at(2, 9, 0)))
	require.NoError(t, err)
	_, err = e.svc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	list, err := e.svc.ListBookings(ctx, &models.ListBookingsRequest{StaffID: ptr.Ptr(staffID)})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, second.ID, list.Bookings[0].ID)

	list, err = e.svc.ListBookings(ctx, &models.ListBookingsRequest{StaffID: ptr.Ptr(staffID), IncludeInactive: true})
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, first.ID, list.Bookings[0].ID)

	list, err = e.svc.ListBookings(ctx, &models.ListBookingsRequest{ClientID: ptr.Ptr(int64(55))})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	_, err = e.svc.ListBookings(ctx, &models.ListBookingsRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.ListBookings(ctx, &models.ListBookingsRequest{StaffID: ptr.Ptr(staffID), Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
