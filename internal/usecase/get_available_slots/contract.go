package get_available_slots

import (
	"context"
	"time"

	"github.com/randevux/booking-service/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListBooked(ctx context.Context, staffIDs []int64, date time.Time) ([]domain.BookedInterval, error)
}

// CatalogRepository интерфейс репозитория компаний, услуг и мастеров
type CatalogRepository interface {
	GetBusiness(ctx context.Context, id int64) (*domain.Business, error)
	GetServices(ctx context.Context, businessID int64, ids []int64) ([]*domain.Service, error)
	ListCapableStaff(ctx context.Context, businessID int64, serviceIDs []int64) ([]*domain.Staff, error)
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	ListWorking(ctx context.Context, staffIDs []int64, weekday time.Weekday) ([]domain.WorkingInterval, error)
	ListBreaks(ctx context.Context, staffIDs []int64, weekday time.Weekday) ([]domain.BreakInterval, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальная реализация TimeProvider
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
