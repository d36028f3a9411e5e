package get_staff_schedule

import (
	"context"

	"github.com/randevux/booking-service/internal/service/schedule/models"
)

type ScheduleService interface {
	GetStaffSchedule(ctx context.Context, businessID, staffID int64) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
