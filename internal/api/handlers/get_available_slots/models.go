package get_available_slots

import (
	"github.com/randevux/booking-service/internal/domain"
	getAvailableSlots "github.com/randevux/booking-service/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string          `json:"date"`
	BusinessID      int64           `json:"businessId"`
	StaffID         *int64          `json:"staffId"` // null - любой мастер
	DurationMinutes int             `json:"durationMinutes"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Time     string  `json:"time"`
	Status   string  `json:"status"`
	Reason   string  `json:"reason,omitempty"` // booked, break or outside_hours
	StaffIDs []int64 `json:"staffIds,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Time:     slot.Time,
			Status:   string(slot.Status),
			Reason:   string(slot.Reason),
			StaffIDs: slot.StaffIDs,
		}
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		BusinessID:      resp.BusinessID,
		StaffID:         resp.StaffID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}
