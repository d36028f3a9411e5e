package domain

// Booking rules
const (
	// SlotStepMinutes cadence of candidate slots
	SlotStepMinutes = 30

	DefaultAdvanceBookingDays   = 0 // 0 = без ограничения
	MaxServicesPerBooking       = 10
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов неактивных записей
// Не участвуют в проверке пересечений
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusNoShow,
}
