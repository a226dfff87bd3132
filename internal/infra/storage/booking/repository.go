package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// pgExclusionViolation код ошибки Postgres при нарушении EXCLUDE ограничения
const pgExclusionViolation = "23P01"

const bookingsTable = "bookings"

var bookingColumns = []string{
	"id",
	"business_id",
	"service_id",
	"staff_id",
	"client_id",
	"client_name",
	"client_contact",
	"start_at",
	"duration_minutes",
	"timezone",
	"status",
	"source",
	"price",
	"notes",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями в Postgres
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b           domain.Booking
		clientID    sql.NullInt64
		notes       sql.NullString
		cancelledAt sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.BusinessID,
		&b.ServiceID,
		&b.StaffID,
		&clientID,
		&b.Client.Name,
		&b.Client.Contact,
		&b.StartAt,
		&b.DurationMinutes,
		&b.Timezone,
		&b.Status,
		&b.Source,
		&b.Price,
		&notes,
		&cancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if clientID.Valid {
		b.Client.ID = &clientID.Int64
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}

	return &b, nil
}

// ListActiveByStaff возвращает активные бронирования сотрудника, пересекающиеся с [from, to).
// Результат отсортирован по времени начала.
func (r *Repository) ListActiveByStaff(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Booking, error) {
	filter := domain.BookingsFilter{
		StaffID: &staffID,
		From:    &from,
		To:      &to,
	}
	bookings, err := r.ListByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ListActiveByStaff: %w", err)
	}
	return bookings, nil
}

// ListByFilter возвращает бронирования по фильтру, отсортированные по времени начала
func (r *Repository) ListByFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		OrderBy("start_at ASC", "id ASC")

	if filter.StaffID != nil {
		builder = builder.Where(squirrel.Eq{"staff_id": *filter.StaffID})
	}
	if filter.ClientID != nil {
		builder = builder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.Gt{"end_at": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"start_at": *filter.To})
	}

	switch {
	case filter.Status != nil:
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	case !filter.IncludeInactive:
		builder = builder.Where(squirrel.Eq{"status": domain.ActiveStatuses})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByFilter - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - rows iteration: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// Put сохраняет бронирование: вставляет новое (ID == 0) или обновляет существующее.
// Возвращает сохраненную копию с ID и временными метками.
func (r *Repository) Put(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	saved := booking.Clone()
	if saved.ID == 0 {
		if err := r.insert(ctx, saved); err != nil {
			return nil, err
		}
		return saved, nil
	}

	if err := r.update(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) insert(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(bookingsTable).
		Columns(
			"business_id",
			"service_id",
			"staff_id",
			"client_id",
			"client_name",
			"client_contact",
			"start_at",
			"end_at",
			"duration_minutes",
			"timezone",
			"status",
			"source",
			"price",
			"notes",
			"cancelled_at",
		).
		Values(
			b.BusinessID,
			b.ServiceID,
			b.StaffID,
			b.Client.ID,
			b.Client.Name,
			b.Client.Contact,
			b.StartAt,
			b.EndAt(),
			b.DurationMinutes,
			b.Timezone,
			b.Status,
			b.Source,
			b.Price,
			b.Notes,
			b.CancelledAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insert - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return mapWriteError("insert", err)
	}

	return nil
}

func (r *Repository) update(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(bookingsTable).
		Set("start_at", b.StartAt).
		Set("end_at", b.EndAt()).
		Set("status", b.Status).
		Set("notes", b.Notes).
		Set("cancelled_at", b.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return mapWriteError("update", err)
	}

	return nil
}

// LockStaff берет транзакционную advisory-блокировку на сотрудника.
// Вне транзакции ничего не делает: блокировка живет до COMMIT/ROLLBACK.
func (r *Repository) LockStaff(ctx context.Context, staffID int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", staffID); err != nil {
		return fmt.Errorf("%w: LockStaff - staff=%d: %v", ErrExecQuery, staffID, err)
	}
	return nil
}

func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgExclusionViolation {
		return fmt.Errorf("%w: %s - constraint %s", ErrOverlap, op, pqErr.Constraint)
	}
	return fmt.Errorf("%w: %s: %v", ErrExecQuery, op, err)
}
