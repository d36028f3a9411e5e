// Package availability вычисляет доступные времена начала для набора мастеров на одну дату.
// Функции чистые, данные календаря загружает и передает вызывающий код.
package availability

import (
	"time"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/pkg/types"
)

// SlotStepMinutes шаг сетки стартов
const SlotStepMinutes = domain.SlotStepMinutes

// Input снимок календаря на одну дату.
// Working, Breaks и Booked могут содержать строки других мастеров или дней, они отфильтровываются здесь.
type Input struct {
	Date            time.Time
	DurationMinutes int
	StaffIDs        []int64 // кандидаты в порядке предпочтения
	Working         []domain.WorkingInterval
	Breaks          []domain.BreakInterval
	Booked          []domain.BookedInterval
	Now             time.Time // текущее время в часовом поясе компании
}

// ResolveSlots возвращает слоты на in.Date по возрастанию времени.
// Для прошедшей даты, пустого списка мастеров или длительности <= 0 результат пустой.
func ResolveSlots(in Input) []domain.CandidateSlot {
	slots := make([]domain.CandidateSlot, 0)

	if len(in.StaffIDs) == 0 || in.DurationMinutes <= 0 {
		return slots
	}

	if isDateInPast(in.Date, in.Now) {
		return slots
	}

	cal := newCalendar(in)

	earliestStart, latestEnd, ok := cal.bounds(in.StaffIDs)
	if !ok {
		return slots
	}

	today := isSameDay(in.Date, in.Now)
	nowMinute := minuteOfDay(in.Now)

	for t := earliestStart; t+in.DurationMinutes <= latestEnd; t += SlotStepMinutes {
		// на сегодня предлагаем только старты строго позже текущего времени
		if today && t <= nowMinute {
			continue
		}
		slots = append(slots, cal.resolve(in.StaffIDs, t, t+in.DurationMinutes))
	}

	return slots
}

// StaffStatus почему staffID не может взять [startMinute, startMinute+in.DurationMinutes).
// ReasonNone - мастер свободен.
func StaffStatus(in Input, staffID int64, startMinute int) domain.SlotReason {
	if in.DurationMinutes <= 0 {
		return domain.ReasonOutsideHours
	}
	return newCalendar(in).staffStatus(staffID, startMinute, startMinute+in.DurationMinutes)
}

// FirstFreeStaff первый мастер из in.StaffIDs, свободный на весь интервал
func FirstFreeStaff(in Input, startMinute int) (int64, bool) {
	if in.DurationMinutes <= 0 {
		return 0, false
	}

	cal := newCalendar(in)
	end := startMinute + in.DurationMinutes
	for _, staffID := range in.StaffIDs {
		if cal.staffStatus(staffID, startMinute, end) == domain.ReasonNone {
			return staffID, true
		}
	}
	return 0, false
}

// OnGrid сетка стартов та же, что у ResolveSlots: шаг SlotStepMinutes от самого раннего начала работы кандидатов
func OnGrid(in Input, startMinute int) bool {
	earliestStart, _, ok := newCalendar(in).bounds(in.StaffIDs)
	if !ok || startMinute < earliestStart {
		return false
	}
	return (startMinute-earliestStart)%SlotStepMinutes == 0
}

// calendar данные одной даты, разложенные по мастерам
type calendar struct {
	working map[int64]domain.WorkingInterval
	breaks  map[int64][]domain.BreakInterval
	booked  map[int64][]domain.BookedInterval
}

func newCalendar(in Input) *calendar {
	dayOfWeek := in.Date.Weekday()

	c := &calendar{
		working: make(map[int64]domain.WorkingInterval),
		breaks:  make(map[int64][]domain.BreakInterval),
		booked:  make(map[int64][]domain.BookedInterval),
	}

	for _, w := range in.Working {
		if w.DayOfWeek != dayOfWeek {
			continue
		}
		// при дублях берем первую строку
		if _, exists := c.working[w.StaffID]; !exists {
			c.working[w.StaffID] = w
		}
	}

	for _, b := range in.Breaks {
		if b.DayOfWeek == dayOfWeek {
			c.breaks[b.StaffID] = append(c.breaks[b.StaffID], b)
		}
	}

	for _, b := range in.Booked {
		if b.Blocks() && isSameDay(b.Date, in.Date) {
			c.booked[b.StaffID] = append(c.booked[b.StaffID], b)
		}
	}

	return c
}

// bounds общее окно работы мастеров в этот день
func (c *calendar) bounds(staffIDs []int64) (earliestStart, latestEnd int, ok bool) {
	for _, staffID := range staffIDs {
		w, exists := c.working[staffID]
		if !exists || !w.IsWorking {
			continue
		}
		if !ok || w.StartMinute < earliestStart {
			earliestStart = w.StartMinute
		}
		if !ok || w.EndMinute > latestEnd {
			latestEnd = w.EndMinute
		}
		ok = true
	}

	if !ok || earliestStart >= latestEnd {
		return 0, 0, false
	}
	return earliestStart, latestEnd, true
}

func (c *calendar) resolve(staffIDs []int64, start, end int) domain.CandidateSlot {
	slot := domain.CandidateSlot{
		Time:        types.FormatTime(start),
		StartMinute: start,
	}

	var blockedByBooking, blockedByBreak bool
	for _, staffID := range staffIDs {
		switch c.staffStatus(staffID, start, end) {
		case domain.ReasonNone:
			slot.StaffIDs = append(slot.StaffIDs, staffID)
		case domain.ReasonBooked:
			blockedByBooking = true
		case domain.ReasonBreak:
			blockedByBreak = true
		}
	}

	switch {
	case len(slot.StaffIDs) > 0:
		slot.Status = domain.SlotAvailable
	case blockedByBooking:
		slot.Status, slot.Reason = domain.SlotBooked, domain.ReasonBooked
	case blockedByBreak:
		slot.Status, slot.Reason = domain.SlotBooked, domain.ReasonBreak
	default:
		slot.Status, slot.Reason = domain.SlotBooked, domain.ReasonOutsideHours
	}

	return slot
}

func (c *calendar) staffStatus(staffID int64, start, end int) domain.SlotReason {
	w, exists := c.working[staffID]
	if !exists || !w.Contains(start, end) {
		return domain.ReasonOutsideHours
	}

	for _, b := range c.breaks[staffID] {
		if types.IsOverlap(start, end, b.StartMinute, b.EndMinute) {
			return domain.ReasonBreak
		}
	}

	for _, b := range c.booked[staffID] {
		if types.IsOverlap(start, end, b.StartMinute, b.EndMinute) {
			return domain.ReasonBooked
		}
	}

	return domain.ReasonNone
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// isSameDay сравнивает календарные даты как есть, без перевода часовых поясов
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast дата раньше сегодняшнего календарного дня
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return dateOnly.Before(nowOnly)
}
