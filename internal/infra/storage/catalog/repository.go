package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/pkg/dbmetrics"
	"github.com/randevux/booking-service/pkg/psqlbuilder"
)

// Repository чтение компаний, услуг и мастеров.
// Каталог редактируется в другом сервисе, здесь только чтение.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый репозиторий каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusiness возвращает компанию по id
func (r *Repository) GetBusiness(ctx context.Context, id int64) (*domain.Business, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "owner_id", "name", "timezone").
		From("businesses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusiness - build select query: %v", ErrBuildQuery, err)
	}

	var b domain.Business
	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.OwnerID, &b.Name, &b.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusiness - scan business: %v", ErrScanRow, err)
	}

	return &b, nil
}

// GetServices активные услуги компании с указанными id.
// Неизвестные, чужие и неактивные id просто отсутствуют в результате.
func (r *Repository) GetServices(ctx context.Context, businessID int64, ids []int64) ([]*domain.Service, error) {
	services := make([]*domain.Service, 0, len(ids))
	if len(ids) == 0 {
		return services, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "business_id", "name", "duration_minutes", "price", "is_active").
		From("services").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetServices - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMinutes, &s.Price, &s.IsActive); err != nil {
			return nil, fmt.Errorf("%w: GetServices - scan row: %v", ErrScanRow, err)
		}
		services = append(services, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetServices - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

// ListCapableStaff активные мастера, умеющие выполнять все serviceIDs,
// сортировка по sort_order и id, чтобы выбор "любого мастера" был стабильным
func (r *Repository) ListCapableStaff(ctx context.Context, businessID int64, serviceIDs []int64) ([]*domain.Staff, error) {
	staff := make([]*domain.Staff, 0)
	if len(serviceIDs) == 0 {
		return staff, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("s.id", "s.business_id", "s.user_id", "s.name", "s.is_active", "s.sort_order").
		From("staff s").
		Join("staff_services ss ON ss.staff_id = s.id").
		Where(squirrel.Eq{"s.business_id": businessID}).
		Where(squirrel.Eq{"s.is_active": true}).
		Where(squirrel.Eq{"ss.service_id": serviceIDs}).
		GroupBy("s.id").
		Having("COUNT(DISTINCT ss.service_id) = ?", len(uniqueIDs(serviceIDs))).
		OrderBy("s.sort_order ASC", "s.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListCapableStaff - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListCapableStaff - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListCapableStaff - scan row: %v", ErrScanRow, err)
		}
		staff = append(staff, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListCapableStaff - rows error: %v", ErrScanRow, err)
	}

	return staff, nil
}

// GetStaff возвращает мастера компании
func (r *Repository) GetStaff(ctx context.Context, businessID, staffID int64) (*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "business_id", "user_id", "name", "is_active", "sort_order").
		From("staff").
		Where(squirrel.Eq{"id": staffID}).
		Where(squirrel.Eq{"business_id": businessID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanStaff(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - scan staff: %v", ErrScanRow, err)
	}

	return s, nil
}

// IsStaffUser привязан ли userID к активному мастеру компании
func (r *Repository) IsStaffUser(ctx context.Context, businessID, userID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	subQuery, args, err := psqlbuilder.Select("1").
		From("staff").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: IsStaffUser - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, "SELECT EXISTS ("+subQuery+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: IsStaffUser - scan: %v", ErrScanRow, err)
	}

	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStaff(row rowScanner) (*domain.Staff, error) {
	var (
		s      domain.Staff
		userID sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.BusinessID, &userID, &s.Name, &s.IsActive, &s.SortOrder); err != nil {
		return nil, err
	}
	if userID.Valid {
		s.UserID = &userID.Int64
	}
	return &s, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
