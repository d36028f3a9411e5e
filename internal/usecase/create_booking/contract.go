package create_booking

import (
	"context"
	"time"

	"github.com/randevux/booking-service/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	// ListBooked внутри транзакции блокирует возвращенные строки
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

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker распределенная блокировка на день компании
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// Notifier публикует события бронирования
type Notifier interface {
	AppointmentCreated(ctx context.Context, appt *domain.Appointment) error
}

// Metrics счетчик исходов бронирования
type Metrics interface {
	ObserveBooking(outcome, staffSelection string)
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
