package domain

import (
	"time"

	"github.com/randevux/booking-service/pkg/types"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// allowedTransitions допустимые переходы статусов, у терминальных статусов записи нет
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// IsValid reports whether s is a known status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Blocks занимает ли запись в этом статусе время мастера
func (s AppointmentStatus) Blocks() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// CanTransitionTo reports whether the move s -> next is allowed
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment booked visit of a customer with one staff member
type Appointment struct {
	ID              int64
	BusinessID      int64
	StaffID         int64
	CustomerID      int64
	Date            time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	TotalPrice      float64
	Status          AppointmentStatus
	Notes           *string

	CancellationReason *string
	CancelledAt        *time.Time

	// Items услуги в порядке выполнения
	Items []AppointmentItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppointmentItem строка услуги в записи.
// Название, длительность и цена копируются при бронировании, правки каталога историю не меняют.
type AppointmentItem struct {
	ID              int64
	AppointmentID   int64
	ServiceID       int64
	ServiceName     string
	DurationMinutes int
	Price           float64
	Position        int
}

// IsActive returns true if the appointment still occupies the staff calendar
func (a *Appointment) IsActive() bool {
	return a.Status.Blocks()
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// BookedInterval интервал записи для проверок доступности
func (a *Appointment) BookedInterval() BookedInterval {
	return BookedInterval{
		StaffID:     a.StaffID,
		Date:        a.Date,
		StartMinute: a.StartTime.Minutes(),
		EndMinute:   a.EndTime.Minutes(),
		Status:      a.Status,
	}
}

// AppointmentsFilter фильтр для получения записей компании
type AppointmentsFilter struct {
	BusinessID      int64              // required
	StaffIDs        []int64            // пусто - все мастера
	StartDate       *time.Time         // nil - без нижней границы
	EndDate         *time.Time         // nil - без верхней границы
	Status          *AppointmentStatus // nil - любой статус
	IncludeInactive bool               // включая cancelled и no_show
}
