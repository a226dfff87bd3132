package get_available_slots

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/cache/slots"
	catalogClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type fakeCatalog struct {
	err error
}

func (f *fakeCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	if f.err != nil {
		return nil, f.err
	}
	switch id {
	case 1:
		return &domain.Service{ID: 1, BusinessID: 10, DurationMinutes: 60, IsActive: true}, nil
	case 2:
		return &domain.Service{ID: 2, BusinessID: 10, DurationMinutes: 60, IsActive: false}, nil
	}
	return nil, catalogClient.ErrServiceNotFound
}

func (f *fakeCatalog) GetStaff(_ context.Context, id int64) (*domain.StaffMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	switch id {
	case 7:
		return &domain.StaffMember{ID: 7, BusinessID: 10, Timezone: "Europe/Moscow", IsActive: true}, nil
	case 8:
		return &domain.StaffMember{ID: 8, BusinessID: 20, Timezone: "Europe/Moscow", IsActive: true}, nil
	}
	return nil, catalogClient.ErrStaffNotFound
}

// fakeCalculator отдает слоты 09:00..12:00 UTC с шагом в час
type fakeCalculator struct {
	calls int
	step  time.Duration
	err   error
}

func (f *fakeCalculator) SlotsFor(
	_ context.Context,
	_ *domain.Service,
	_ *domain.StaffMember,
	day time.Time,
	granularity time.Duration,
) (iter.Seq[domain.Slot], error) {
	f.calls++
	f.step = granularity
	if f.err != nil {
		return nil, f.err
	}

	base := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
	return func(yield func(domain.Slot) bool) {
		for i := 0; i < 4; i++ {
			start := base.Add(time.Duration(i) * time.Hour)
			if !yield(domain.Slot{Start: start, End: start.Add(time.Hour)}) {
				return
			}
		}
	}, nil
}

type fakeCache struct {
	entries map[slots.Key][]domain.Slot
	getErr  error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[slots.Key][]domain.Slot)}
}

func (f *fakeCache) Get(_ context.Context, key slots.Key) ([]domain.Slot, int64, bool, error) {
	if f.getErr != nil {
		return nil, 0, false, f.getErr
	}
	s, ok := f.entries[key]
	return s, 1, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key slots.Key, _ int64, s []domain.Slot) error {
	f.sets++
	f.entries[key] = slices.Clone(s)
	return nil
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newUseCase(calc SlotCalculator, cache SlotCache, catalog CatalogClient, now time.Time) *UseCase {
	return NewUseCase(catalog, calc, cache, nil, logger.NewDiscard()).
		WithTimeProvider(fixedTime{now: now})
}

func TestExecute_Success(t *testing.T) {
	calc := &fakeCalculator{}
	uc := newUseCase(calc, nil, &fakeCatalog{}, monday.AddDate(0, 0, -1))

	resp, err := uc.Execute(context.Background(), &Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday})
	require.NoError(t, err)

	assert.Equal(t, "Europe/Moscow", resp.Timezone)
	assert.Equal(t, time.Duration(domain.DefaultStepMinutes)*time.Minute, calc.step)
	require.Len(t, resp.Slots, 4)
	assert.Equal(t, "12:00", resp.Slots[0].Start.Format(domain.TimeFormat), "09:00 UTC rendered in Moscow time")
}

func TestExecute_DropsPastSlots(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	uc := newUseCase(&fakeCalculator{}, nil, &fakeCatalog{}, now)

	resp, err := uc.Execute(context.Background(), &Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 2, "slots starting at or before now are not offered")
	assert.True(t, resp.Slots[0].Start.Equal(time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)))
}

func TestExecute_Validation(t *testing.T) {
	uc := newUseCase(&fakeCalculator{}, nil, &fakeCatalog{}, monday)

	cases := []struct {
		name string
		req  Request
	}{
		{"business", Request{ServiceID: 1, StaffID: 7, Day: monday}},
		{"service", Request{BusinessID: 10, StaffID: 7, Day: monday}},
		{"staff", Request{BusinessID: 10, ServiceID: 1, Day: monday}},
		{"day", Request{BusinessID: 10, ServiceID: 1, StaffID: 7}},
		{"step too small", Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday, StepMinutes: 1}},
		{"step too large", Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday, StepMinutes: 90}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := uc.Execute(context.Background(), &req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_CatalogErrors(t *testing.T) {
	uc := newUseCase(&fakeCalculator{}, nil, &fakeCatalog{}, monday)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{BusinessID: 10, ServiceID: 99, StaffID: 7, Day: monday})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = uc.Execute(ctx, &Request{BusinessID: 10, ServiceID: 2, StaffID: 7, Day: monday})
	assert.ErrorIs(t, err, ErrServiceNotFound, "inactive service")

	_, err = uc.Execute(ctx, &Request{BusinessID: 10, ServiceID: 1, StaffID: 8, Day: monday})
	assert.ErrorIs(t, err, ErrStaffNotFound, "staff of another business")

	down := newUseCase(&fakeCalculator{}, nil, &fakeCatalog{err: errors.New("timeout")}, monday)
	_, err = down.Execute(ctx, &Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestExecute_CalculatorFailure(t *testing.T) {
	uc := newUseCase(&fakeCalculator{err: errors.New("db down")}, nil, &fakeCatalog{}, monday)

	_, err := uc.Execute(context.Background(), &Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestExecute_UsesCache(t *testing.T) {
	calc := &fakeCalculator{}
	cache := newFakeCache()
	uc := newUseCase(calc, cache, &fakeCatalog{}, monday.AddDate(0, 0, -1))
	ctx := context.Background()

	first, err := uc.Execute(ctx, &Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday, StepMinutes: 30})
	require.NoError(t, err)
	second, err := uc.Execute(ctx, &Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday, StepMinutes: 30})
	require.NoError(t, err)

	assert.Equal(t, 1, calc.calls, "second call is served from cache")
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, len(first.Slots), len(second.Slots))

	_, err = uc.Execute(ctx, &Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday, StepMinutes: 15})
	require.NoError(t, err)
	assert.Equal(t, 2, calc.calls, "different step is a different cache entry")
}

func TestExecute_CacheFailureFallsBackToCalculator(t *testing.T) {
	calc := &fakeCalculator{}
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	uc := newUseCase(calc, cache, &fakeCatalog{}, monday.AddDate(0, 0, -1))

	resp, err := uc.Execute(context.Background(), &Request{BusinessID: 10, ServiceID: 1, StaffID: 7, Day: monday})
	require.NoError(t, err)

	assert.Len(t, resp.Slots, 4)
	assert.Equal(t, 1, calc.calls)
	assert.Zero(t, cache.sets, "nothing is written while the cache is unhealthy")
}
