package cancel_appointment

import (
	"github.com/randevux/booking-service/internal/service/appointments/models"
)

// CancelAppointmentRequest HTTP request model, тело может быть пустым
type CancelAppointmentRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelAppointmentRequest) ToServiceRequest(userID int64) *models.CancelAppointmentRequest {
	reason := ""
	if r.CancellationReason != nil {
		reason = *r.CancellationReason
	}

	return &models.CancelAppointmentRequest{
		UserID:             userID,
		CancellationReason: reason,
	}
}
