package models

import (
	"fmt"
	"time"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/pkg/ptr"
	"github.com/randevux/booking-service/pkg/types"
)

// BreakSlot перерыв внутри рабочего дня
type BreakSlot struct {
	StartTime types.TimeString `json:"startTime"` // "13:00"
	EndTime   types.TimeString `json:"endTime"`
}

// DaySchedule рабочие часы одного дня недели, 0 = воскресенье
type DaySchedule struct {
	DayOfWeek int               `json:"dayOfWeek"`
	IsWorking bool              `json:"isWorking"`
	StartTime *types.TimeString `json:"startTime,omitempty"`
	EndTime   *types.TimeString `json:"endTime,omitempty"`
	Breaks    []BreakSlot       `json:"breaks"`
}

// UpdateScheduleRequest полное расписание на неделю, не указанные дни становятся выходными
type UpdateScheduleRequest struct {
	UserID int64         `json:"userId"`
	Days   []DaySchedule `json:"days"`
}

// ScheduleResponse расписание мастера, всегда семь дней начиная с воскресенья
type ScheduleResponse struct {
	BusinessID int64         `json:"businessId"`
	StaffID    int64         `json:"staffId"`
	Days       []DaySchedule `json:"days"`
}

// FromDomainSchedule конвертирует расписание, дни без строки считаются выходными
func FromDomainSchedule(businessID int64, s *domain.WeeklySchedule) *ScheduleResponse {
	resp := &ScheduleResponse{
		BusinessID: businessID,
		StaffID:    s.StaffID,
		Days:       make([]DaySchedule, 0, 7),
	}

	for day := time.Sunday; day <= time.Saturday; day++ {
		ds := DaySchedule{DayOfWeek: int(day), Breaks: []BreakSlot{}}

		if w, ok := workingRow(s.Days, day); ok && w.IsWorking {
			ds.IsWorking = true
			ds.StartTime = ptr.Ptr(types.TimeString(types.FormatTime(w.StartMinute)))
			ds.EndTime = ptr.Ptr(types.TimeString(types.FormatTime(w.EndMinute)))
		}

		for _, b := range s.Breaks {
			if b.DayOfWeek == day {
				ds.Breaks = append(ds.Breaks, BreakSlot{
					StartTime: types.TimeString(types.FormatTime(b.StartMinute)),
					EndTime:   types.TimeString(types.FormatTime(b.EndMinute)),
				})
			}
		}

		resp.Days = append(resp.Days, ds)
	}

	return resp
}

// ToDomain конвертирует день в рабочую строку и перерывы
func (d DaySchedule) ToDomain(staffID int64) (domain.WorkingInterval, []domain.BreakInterval, error) {
	w := domain.WorkingInterval{
		StaffID:   staffID,
		DayOfWeek: time.Weekday(d.DayOfWeek),
		IsWorking: d.IsWorking,
	}

	if d.IsWorking {
		if d.StartTime == nil || d.EndTime == nil {
			return w, nil, fmt.Errorf("day %d: working day needs startTime and endTime", d.DayOfWeek)
		}
		start, err := types.ParseTime(d.StartTime.String())
		if err != nil {
			return w, nil, fmt.Errorf("day %d: startTime: %w", d.DayOfWeek, err)
		}
		end, err := types.ParseEndTime(d.EndTime.String())
		if err != nil {
			return w, nil, fmt.Errorf("day %d: endTime: %w", d.DayOfWeek, err)
		}
		w.StartMinute, w.EndMinute = start, end
	}

	breaks := make([]domain.BreakInterval, 0, len(d.Breaks))
	for _, b := range d.Breaks {
		start, err := types.ParseTime(b.StartTime.String())
		if err != nil {
			return w, nil, fmt.Errorf("day %d: break startTime: %w", d.DayOfWeek, err)
		}
		end, err := types.ParseEndTime(b.EndTime.String())
		if err != nil {
			return w, nil, fmt.Errorf("day %d: break endTime: %w", d.DayOfWeek, err)
		}
		breaks = append(breaks, domain.BreakInterval{
			StaffID:     staffID,
			DayOfWeek:   time.Weekday(d.DayOfWeek),
			StartMinute: start,
			EndMinute:   end,
		})
	}

	return w, breaks, nil
}

// workingRow первая строка дня, дубли игнорируются как при проверке доступности
func workingRow(days []domain.WorkingInterval, day time.Weekday) (domain.WorkingInterval, bool) {
	for _, w := range days {
		if w.DayOfWeek == day {
			return w, true
		}
	}
	return domain.WorkingInterval{}, false
}
