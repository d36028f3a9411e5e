package domain

import (
	"time"

	"github.com/randevux/booking-service/pkg/types"
)

// WorkingInterval рабочие часы мастера в один день недели.
// DayOfWeek как в time.Weekday: 0 = воскресенье.
type WorkingInterval struct {
	StaffID     int64
	DayOfWeek   time.Weekday
	IsWorking   bool
	StartMinute int
	EndMinute   int
}

// IsValid reports whether the interval satisfies start < end on working days
func (w WorkingInterval) IsValid() bool {
	if w.DayOfWeek < time.Sunday || w.DayOfWeek > time.Saturday {
		return false
	}
	if !w.IsWorking {
		return true
	}
	return w.StartMinute >= 0 && w.StartMinute < w.EndMinute && w.EndMinute <= types.MinutesPerDay
}

// Contains reports whether [start, end) lies inside the working interval
func (w WorkingInterval) Contains(start, end int) bool {
	return w.IsWorking && start >= w.StartMinute && end <= w.EndMinute
}

// BreakInterval перерыв внутри рабочего дня (обед и т.п.)
type BreakInterval struct {
	ID          int64
	StaffID     int64
	DayOfWeek   time.Weekday
	StartMinute int
	EndMinute   int
}

// BookedInterval time occupied by an existing appointment
type BookedInterval struct {
	StaffID     int64
	Date        time.Time
	StartMinute int
	EndMinute   int
	Status      AppointmentStatus
}

// Blocks reports whether the interval takes part in conflict checks
func (b BookedInterval) Blocks() bool {
	return b.Status.Blocks()
}

// WeeklySchedule рабочие часы и перерывы одного мастера
type WeeklySchedule struct {
	StaffID int64
	Days    []WorkingInterval
	Breaks  []BreakInterval
}
