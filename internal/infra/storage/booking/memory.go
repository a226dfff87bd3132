package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// MemoryRepository хранилище бронирований в памяти.
// Безопасно для конкурентного использования, наружу отдает только копии.
type MemoryRepository struct {
	mu       sync.RWMutex
	seq      int64
	bookings map[int64]*domain.Booking
	now      func() time.Time
}

// NewMemoryRepository создает пустое хранилище
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		bookings: make(map[int64]*domain.Booking),
		now:      time.Now,
	}
}

// ListActiveByStaff возвращает активные бронирования сотрудника, пересекающиеся с [from, to)
func (r *MemoryRepository) ListActiveByStaff(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Booking, error) {
	return r.ListByFilter(ctx, domain.BookingsFilter{StaffID: &staffID, From: &from, To: &to})
}

// ListByFilter возвращает бронирования по фильтру, отсортированные по времени начала
func (r *MemoryRepository) ListByFilter(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if filter.Matches(b) {
			result = append(result, b.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartAt.Equal(result[j].StartAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartAt.Before(result[j].StartAt)
	})

	return result, nil
}

// GetByID получает бронирование по ID
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b.Clone(), nil
}

// Put вставляет (ID == 0) или обновляет бронирование
func (r *MemoryRepository) Put(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := booking.Clone()
	now := r.now()

	if saved.ID == 0 {
		r.seq++
		saved.ID = r.seq
		saved.CreatedAt = now
	} else {
		existing, ok := r.bookings[saved.ID]
		if !ok {
			return nil, ErrBookingNotFound
		}
		saved.CreatedAt = existing.CreatedAt
	}
	saved.UpdatedAt = now

	r.bookings[saved.ID] = saved
	return saved.Clone(), nil
}

// LockStaff ничего не делает: межпроцессной блокировки в памяти нет
func (r *MemoryRepository) LockStaff(context.Context, int64) error {
	return nil
}
