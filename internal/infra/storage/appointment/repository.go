package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/pkg/dbmetrics"
	"github.com/randevux/booking-service/pkg/psqlbuilder"
)

// exclusionViolation SQLSTATE при нарушении appointments_no_overlap
const exclusionViolation = "23P01"

var appointmentColumns = []string{
	"id",
	"business_id",
	"staff_id",
	"customer_id",
	"appointment_date",
	"start_time",
	"end_time",
	"duration_minutes",
	"total_price",
	"status",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый репозиторий записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет запись и ее услуги.
// Вызывать внутри транзакции, иначе при ошибке вставки услуг останется запись без них.
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"business_id",
			"staff_id",
			"customer_id",
			"appointment_date",
			"start_time",
			"end_time",
			"duration_minutes",
			"total_price",
			"status",
			"notes",
		).
		Values(
			appt.BusinessID,
			appt.StaffID,
			appt.CustomerID,
			appt.Date,
			appt.StartTime,
			appt.EndTime,
			appt.DurationMinutes,
			appt.TotalPrice,
			appt.Status,
			appt.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&appt.ID, &createdAt, &updatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, fmt.Errorf("%w: staff=%d date=%s %s-%s", ErrOverlap,
				appt.StaffID, appt.Date.Format(domain.DateFormat), appt.StartTime, appt.EndTime)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	if len(appt.Items) == 0 {
		return appt, nil
	}

	itemsInsert := psqlbuilder.Insert("appointment_items").
		Columns("appointment_id", "service_id", "service_name", "duration_minutes", "price", "position")
	for i := range appt.Items {
		appt.Items[i].AppointmentID = appt.ID
		appt.Items[i].Position = i
		item := appt.Items[i]
		itemsInsert = itemsInsert.Values(appt.ID, item.ServiceID, item.ServiceName, item.DurationMinutes, item.Price, item.Position)
	}

	query, args, err = itemsInsert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build items insert: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - execute items insert: %v", ErrExecQuery, err)
	}

	return appt, nil
}

// GetByID возвращает запись с услугами, внутри транзакции строка блокируется
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	if err := r.attachItems(ctx, []*domain.Appointment{appt}); err != nil {
		return nil, err
	}

	return appt, nil
}

// ListBooked активные интервалы мастеров на дату.
// Внутри транзакции строки блокируются FOR UPDATE до коммита.
func (r *Repository) ListBooked(ctx context.Context, staffIDs []int64, date time.Time) ([]domain.BookedInterval, error) {
	if len(staffIDs) == 0 {
		return []domain.BookedInterval{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("staff_id", "appointment_date", "start_time", "end_time", "status").
		From("appointments").
		Where(squirrel.Eq{"staff_id": staffIDs}).
		Where(squirrel.Eq{"appointment_date": date}).
		Where(squirrel.NotEq{"status": inactiveStatuses()}).
		OrderBy("staff_id ASC", "start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBooked - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBooked - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	intervals := make([]domain.BookedInterval, 0)
	for rows.Next() {
		var appt domain.Appointment
		if err := rows.Scan(&appt.StaffID, &appt.Date, &appt.StartTime, &appt.EndTime, &appt.Status); err != nil {
			return nil, fmt.Errorf("%w: ListBooked - scan row: %v", ErrScanRow, err)
		}
		intervals = append(intervals, appt.BookedInterval())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBooked - rows error: %v", ErrScanRow, err)
	}

	return intervals, nil
}

// GetByCustomer записи клиента, сначала новые
func (r *Repository) GetByCustomer(ctx context.Context, customerID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("appointment_date DESC", "start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	return r.list(ctx, "GetByCustomer", selectBuilder)
}

// GetByBusinessWithFilter записи компании по фильтру.
// Один день сортируется по времени начала, более широкий диапазон - сначала новые.
func (r *Repository) GetByBusinessWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"business_id": filter.BusinessID})

	if len(filter.StaffIDs) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": filter.StaffIDs})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_date": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatuses()})
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC", "staff_id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("appointment_date DESC", "start_time DESC")
	}

	return r.list(ctx, "GetByBusinessWithFilter", selectBuilder)
}

// UpdateStatus обновляет статус
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "UpdateStatus", query, args)
}

// Cancel отменяет запись с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "Cancel", query, args)
}

func (r *Repository) list(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	if err := r.attachItems(ctx, appointments); err != nil {
		return nil, err
	}

	return appointments, nil
}

// attachItems загружает услуги всех записей одним запросом
func (r *Repository) attachItems(ctx context.Context, appointments []*domain.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Appointment, len(appointments))
	ids := make([]int64, 0, len(appointments))
	for _, a := range appointments {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "appointment_id", "service_id", "service_name", "duration_minutes", "price", "position").
		From("appointment_items").
		Where(squirrel.Eq{"appointment_id": ids}).
		OrderBy("appointment_id ASC", "position ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: attachItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: attachItems - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.AppointmentItem
		if err := rows.Scan(&item.ID, &item.AppointmentID, &item.ServiceID, &item.ServiceName,
			&item.DurationMinutes, &item.Price, &item.Position); err != nil {
			return fmt.Errorf("%w: attachItems - scan row: %v", ErrScanRow, err)
		}
		if a, ok := byID[item.AppointmentID]; ok {
			a.Items = append(a.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: attachItems - rows error: %v", ErrScanRow, err)
	}

	return nil
}

func (r *Repository) execAffectingOne(ctx context.Context, op, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appt                 domain.Appointment
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&appt.ID,
		&appt.BusinessID,
		&appt.StaffID,
		&appt.CustomerID,
		&appt.Date,
		&appt.StartTime,
		&appt.EndTime,
		&appt.DurationMinutes,
		&appt.TotalPrice,
		&appt.Status,
		&appt.Notes,
		&appt.CancellationReason,
		&appt.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return &appt, nil
}

func inactiveStatuses() []string {
	statuses := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == exclusionViolation
}
