package get_available_slots

import (
	"time"

	"github.com/randevux/booking-service/internal/domain"
)

// Request запрос доступных слотов
type Request struct {
	BusinessID int64
	ServiceIDs []int64
	StaffID    *int64    // nil - любой подходящий мастер
	Date       time.Time // календарная дата, время игнорируется
}

// Response слоты на запрошенную дату
type Response struct {
	Date            time.Time
	BusinessID      int64
	StaffID         *int64
	DurationMinutes int
	Slots           []domain.CandidateSlot
}
