package update_staff_schedule

import (
	"context"

	"github.com/randevux/booking-service/internal/service/schedule/models"
)

type ScheduleService interface {
	UpdateStaffSchedule(ctx context.Context, businessID, staffID int64, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
