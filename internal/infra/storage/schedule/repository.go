package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/pkg/dbmetrics"
	"github.com/randevux/booking-service/pkg/psqlbuilder"
)

// Repository рабочие часы и перерывы мастеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый репозиторий расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListWorking рабочие часы мастеров в день недели
func (r *Repository) ListWorking(ctx context.Context, staffIDs []int64, weekday time.Weekday) ([]domain.WorkingInterval, error) {
	if len(staffIDs) == 0 {
		return []domain.WorkingInterval{}, nil
	}

	return r.selectWorking(ctx, "ListWorking", squirrel.And{
		squirrel.Eq{"staff_id": staffIDs},
		squirrel.Eq{"weekday": int(weekday)},
	})
}

// ListWorkingWeek все настроенные дни одного мастера
func (r *Repository) ListWorkingWeek(ctx context.Context, staffID int64) ([]domain.WorkingInterval, error) {
	return r.selectWorking(ctx, "ListWorkingWeek", squirrel.Eq{"staff_id": staffID})
}

// ListBreaks перерывы мастеров в день недели
func (r *Repository) ListBreaks(ctx context.Context, staffIDs []int64, weekday time.Weekday) ([]domain.BreakInterval, error) {
	if len(staffIDs) == 0 {
		return []domain.BreakInterval{}, nil
	}

	return r.selectBreaks(ctx, "ListBreaks", squirrel.And{
		squirrel.Eq{"staff_id": staffIDs},
		squirrel.Eq{"weekday": int(weekday)},
	})
}

// ListBreaksWeek все перерывы одного мастера
func (r *Repository) ListBreaksWeek(ctx context.Context, staffID int64) ([]domain.BreakInterval, error) {
	return r.selectBreaks(ctx, "ListBreaksWeek", squirrel.Eq{"staff_id": staffID})
}

// UpsertWorkingHours вставляет или заменяет строку (мастер, день недели)
func (r *Repository) UpsertWorkingHours(ctx context.Context, w domain.WorkingInterval) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("staff_working_hours").
		Columns("staff_id", "weekday", "is_working", "start_minute", "end_minute").
		Values(w.StaffID, int(w.DayOfWeek), w.IsWorking, w.StartMinute, w.EndMinute).
		Suffix("ON CONFLICT (staff_id, weekday) DO UPDATE SET " +
			"is_working = EXCLUDED.is_working, " +
			"start_minute = EXCLUDED.start_minute, " +
			"end_minute = EXCLUDED.end_minute").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpsertWorkingHours - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertWorkingHours - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ReplaceBreaks удаляет все перерывы мастера и вставляет breaks.
// Вызывать в одной транзакции с UpsertWorkingHours.
func (r *Repository) ReplaceBreaks(ctx context.Context, staffID int64, breaks []domain.BreakInterval) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("staff_breaks").
		Where(squirrel.Eq{"staff_id": staffID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceBreaks - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceBreaks - execute delete: %v", ErrExecQuery, err)
	}

	if len(breaks) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert("staff_breaks").
		Columns("staff_id", "weekday", "start_minute", "end_minute")
	for _, b := range breaks {
		insert = insert.Values(staffID, int(b.DayOfWeek), b.StartMinute, b.EndMinute)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceBreaks - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceBreaks - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) selectWorking(ctx context.Context, op string, where squirrel.Sqlizer) ([]domain.WorkingInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("staff_id", "weekday", "is_working", "start_minute", "end_minute").
		From("staff_working_hours").
		Where(where).
		OrderBy("staff_id ASC", "weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	intervals := make([]domain.WorkingInterval, 0)
	for rows.Next() {
		var (
			w       domain.WorkingInterval
			weekday int
		)
		if err := rows.Scan(&w.StaffID, &weekday, &w.IsWorking, &w.StartMinute, &w.EndMinute); err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		w.DayOfWeek = time.Weekday(weekday)
		intervals = append(intervals, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return intervals, nil
}

func (r *Repository) selectBreaks(ctx context.Context, op string, where squirrel.Sqlizer) ([]domain.BreakInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "staff_id", "weekday", "start_minute", "end_minute").
		From("staff_breaks").
		Where(where).
		OrderBy("staff_id ASC", "weekday ASC", "start_minute ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	return scanBreaks(op, rows)
}

func scanBreaks(op string, rows *sql.Rows) ([]domain.BreakInterval, error) {
	breaks := make([]domain.BreakInterval, 0)
	for rows.Next() {
		var (
			b       domain.BreakInterval
			weekday int
		)
		if err := rows.Scan(&b.ID, &b.StaffID, &weekday, &b.StartMinute, &b.EndMinute); err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		b.DayOfWeek = time.Weekday(weekday)
		breaks = append(breaks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return breaks, nil
}
