package update_staff_schedule

import (
	"github.com/randevux/booking-service/internal/service/schedule/models"
)

// UpdateScheduleRequest HTTP request model, неделя заменяется целиком
type UpdateScheduleRequest struct {
	Days []models.DaySchedule `json:"days"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateScheduleRequest) ToServiceRequest(userID int64) *models.UpdateScheduleRequest {
	return &models.UpdateScheduleRequest{
		UserID: userID,
		Days:   r.Days,
	}
}
