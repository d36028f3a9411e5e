package schedule

import (
	"context"

	"github.com/randevux/booking-service/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	ListWorkingWeek(ctx context.Context, staffID int64) ([]domain.WorkingInterval, error)
	ListBreaksWeek(ctx context.Context, staffID int64) ([]domain.BreakInterval, error)
	UpsertWorkingHours(ctx context.Context, w domain.WorkingInterval) error
	ReplaceBreaks(ctx context.Context, staffID int64, breaks []domain.BreakInterval) error
}

// CatalogRepository компании и мастера
type CatalogRepository interface {
	GetBusiness(ctx context.Context, id int64) (*domain.Business, error)
	GetStaff(ctx context.Context, businessID, staffID int64) (*domain.Staff, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
