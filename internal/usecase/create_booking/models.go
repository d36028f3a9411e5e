package create_booking

import (
	"time"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/pkg/types"
)

// Request запрос на создание бронирования
type Request struct {
	BusinessID int64
	CustomerID int64            // аутентифицированный пользователь
	StaffID    *int64           // nil - любой подходящий мастер
	ServiceIDs []int64          // выполняются в этом порядке
	Date       time.Time        // календарная дата, время игнорируется
	StartTime  types.TimeString // "HH:MM" по времени компании
	Notes      *string
}

// Options настройки из конфигурации
type Options struct {
	LockTTL            time.Duration
	NotifyTimeout      time.Duration
	AdvanceBookingDays int // 0 - без ограничения
}

// Response созданная запись
type Response struct {
	ID              int64
	BusinessID      int64
	StaffID         int64
	CustomerID      int64
	Date            time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	TotalPrice      float64
	Status          domain.AppointmentStatus
	Notes           *string
	Items           []domain.AppointmentItem
	CreatedAt       time.Time
}

func newResponse(a *domain.Appointment) *Response {
	return &Response{
		ID:              a.ID,
		BusinessID:      a.BusinessID,
		StaffID:         a.StaffID,
		CustomerID:      a.CustomerID,
		Date:            a.Date,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		DurationMinutes: a.DurationMinutes,
		TotalPrice:      a.TotalPrice,
		Status:          a.Status,
		Notes:           a.Notes,
		Items:           a.Items,
		CreatedAt:       a.CreatedAt,
	}
}
