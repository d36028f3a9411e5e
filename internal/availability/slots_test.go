package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/pkg/types"
)

// 2026-03-10 - вторник
var (
	testDate  = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dayBefore = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
)

func hm(t *testing.T, s string) int {
	t.Helper()
	m, err := types.ParseEndTime(s)
	require.NoError(t, err)
	return m
}

func working(t *testing.T, staffID int64, start, end string) domain.WorkingInterval {
	return domain.WorkingInterval{
		StaffID:     staffID,
		DayOfWeek:   time.Tuesday,
		IsWorking:   true,
		StartMinute: hm(t, start),
		EndMinute:   hm(t, end),
	}
}

func booked(t *testing.T, staffID int64, start, end string, status domain.AppointmentStatus) domain.BookedInterval {
	return domain.BookedInterval{
		StaffID:     staffID,
		Date:        testDate,
		StartMinute: hm(t, start),
		EndMinute:   hm(t, end),
		Status:      status,
	}
}

func slotTimes(slots []domain.CandidateSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Time)
	}
	return out
}

func TestResolveSlots_SimpleDay(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{1},
		Working:         []domain.WorkingInterval{working(t, 1, "09:00", "17:00")},
		Now:             dayBefore,
	}

	slots := ResolveSlots(in)

	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "16:30", slots[15].Time)
	for _, s := range slots {
		assert.Equal(t, domain.SlotAvailable, s.Status, s.Time)
		assert.Equal(t, domain.ReasonNone, s.Reason, s.Time)
		assert.Equal(t, []int64{1}, s.StaffIDs, s.Time)
	}
}

func TestResolveSlots_BreakCarveOut(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{1},
		Working:         []domain.WorkingInterval{working(t, 1, "09:00", "17:00")},
		Breaks: []domain.BreakInterval{{
			StaffID:     1,
			DayOfWeek:   time.Tuesday,
			StartMinute: hm(t, "12:00"),
			EndMinute:   hm(t, "13:00"),
		}},
		Now: dayBefore,
	}

	slots := ResolveSlots(in)
	require.Len(t, slots, 16)

	for _, s := range slots {
		switch s.Time {
		case "12:00", "12:30":
			assert.Equal(t, domain.SlotBooked, s.Status, s.Time)
			assert.Equal(t, domain.ReasonBreak, s.Reason, s.Time)
			assert.Empty(t, s.StaffIDs, s.Time)
		default:
			assert.Equal(t, domain.SlotAvailable, s.Status, s.Time)
		}
	}
}

func TestResolveSlots_BreakCarveOutLongService(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 60,
		StaffIDs:        []int64{1},
		Working:         []domain.WorkingInterval{working(t, 1, "09:00", "17:00")},
		Breaks: []domain.BreakInterval{{
			StaffID:     1,
			DayOfWeek:   time.Tuesday,
			StartMinute: hm(t, "12:00"),
			EndMinute:   hm(t, "13:00"),
		}},
		Now: dayBefore,
	}

	var blocked []string
	for _, s := range ResolveSlots(in) {
		if !s.IsAvailable() {
			blocked = append(blocked, s.Time)
		}
	}

	assert.Equal(t, []string{"11:30", "12:00", "12:30"}, blocked)
}

func TestResolveSlots_EmptyInputs(t *testing.T) {
	base := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{1},
		Working:         []domain.WorkingInterval{working(t, 1, "09:00", "17:00")},
		Now:             dayBefore,
	}

	tests := []struct {
		name   string
		modify func(in *Input)
	}{
		{name: "no staff", modify: func(in *Input) { in.StaffIDs = nil }},
		{name: "zero duration", modify: func(in *Input) { in.DurationMinutes = 0 }},
		{name: "negative duration", modify: func(in *Input) { in.DurationMinutes = -30 }},
		{name: "past date", modify: func(in *Input) { in.Now = testDate.AddDate(0, 0, 1) }},
		{name: "nobody works", modify: func(in *Input) { in.Working[0].IsWorking = false }},
		{name: "working on another weekday", modify: func(in *Input) { in.Working[0].DayOfWeek = time.Monday }},
		{name: "duration longer than day", modify: func(in *Input) { in.DurationMinutes = 9 * 60 }},
		{name: "empty working window", modify: func(in *Input) { in.Working[0].EndMinute = in.Working[0].StartMinute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			in.Working = append([]domain.WorkingInterval(nil), base.Working...)
			tt.modify(&in)

			slots := ResolveSlots(in)

			assert.NotNil(t, slots)
			assert.Empty(t, slots)
		})
	}
}

func TestResolveSlots_TodaySkipsPastAndCurrentStarts(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{1},
		Working:         []domain.WorkingInterval{working(t, 1, "09:00", "12:00")},
		Now:             time.Date(2026, 3, 10, 10, 0, 30, 0, time.UTC),
	}

	assert.Equal(t, []string{"10:30", "11:00", "11:30"}, slotTimes(ResolveSlots(in)))

	in.Now = time.Date(2026, 3, 10, 10, 1, 0, 0, time.UTC)
	assert.Equal(t, []string{"10:30", "11:00", "11:30"}, slotTimes(ResolveSlots(in)))

	in.Now = time.Date(2026, 3, 10, 9, 59, 0, 0, time.UTC)
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30"}, slotTimes(ResolveSlots(in)))
}

func TestResolveSlots_BookingConflictReason(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{1},
		Working:         []domain.WorkingInterval{working(t, 1, "09:00", "11:00")},
		Booked: []domain.BookedInterval{
			booked(t, 1, "09:30", "10:00", domain.StatusConfirmed),
			booked(t, 1, "10:00", "10:30", domain.StatusCancelled),
			booked(t, 1, "10:30", "11:00", domain.StatusNoShow),
		},
		Now: dayBefore,
	}

	slots := ResolveSlots(in)
	require.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, slotTimes(slots))

	assert.True(t, slots[0].IsAvailable())
	assert.Equal(t, domain.SlotBooked, slots[1].Status)
	assert.Equal(t, domain.ReasonBooked, slots[1].Reason)
	assert.True(t, slots[2].IsAvailable(), "cancelled appointment must not block")
	assert.True(t, slots[3].IsAvailable(), "no-show appointment must not block")
}

func TestResolveSlots_BookingOnAnotherDateIgnored(t *testing.T) {
	other := booked(t, 1, "09:00", "10:00", domain.StatusConfirmed)
	other.Date = testDate.AddDate(0, 0, 7)

	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{1},
		Working:         []domain.WorkingInterval{working(t, 1, "09:00", "10:00")},
		Booked:          []domain.BookedInterval{other},
		Now:             dayBefore,
	}

	for _, s := range ResolveSlots(in) {
		assert.True(t, s.IsAvailable(), s.Time)
	}
}

func TestResolveSlots_ReasonPriority(t *testing.T) {
	// мастер 1 занят, у мастера 2 перерыв, мастер 3 не покрывает слот
	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{3, 2, 1},
		Working: []domain.WorkingInterval{
			working(t, 1, "09:00", "10:00"),
			working(t, 2, "09:00", "10:00"),
			working(t, 3, "09:30", "10:00"),
		},
		Breaks: []domain.BreakInterval{{StaffID: 2, DayOfWeek: time.Tuesday, StartMinute: hm(t, "09:00"), EndMinute: hm(t, "09:30")}},
		Booked: []domain.BookedInterval{booked(t, 1, "09:00", "09:30", domain.StatusPending)},
		Now:    dayBefore,
	}

	slots := ResolveSlots(in)
	require.Len(t, slots, 2)
	assert.Equal(t, domain.ReasonBooked, slots[0].Reason)
	assert.Equal(t, []int64{3, 2, 1}, slots[1].StaffIDs)

	in.StaffIDs = []int64{3, 2}
	slots = ResolveSlots(in)
	assert.Equal(t, domain.ReasonBreak, slots[0].Reason)

	in.StaffIDs = []int64{3}
	slots = ResolveSlots(in)
	require.Len(t, slots, 1, "window is bounded by staff 3 hours")
	assert.Equal(t, "09:30", slots[0].Time)
}

func TestResolveSlots_OutsideHoursInsideUnion(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 60,
		StaffIDs:        []int64{1, 2},
		Working: []domain.WorkingInterval{
			working(t, 1, "09:00", "10:00"),
			working(t, 2, "11:00", "12:00"),
		},
		Now: dayBefore,
	}

	slots := ResolveSlots(in)
	require.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00"}, slotTimes(slots))

	assert.Equal(t, []int64{1}, slots[0].StaffIDs)
	for _, s := range slots[1:4] {
		assert.Equal(t, domain.ReasonOutsideHours, s.Reason, s.Time)
	}
	assert.Equal(t, []int64{2}, slots[4].StaffIDs)
}

func TestResolveSlots_AnyStaffResolution(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{1, 2},
		Working: []domain.WorkingInterval{
			working(t, 1, "09:00", "17:00"),
			working(t, 2, "09:00", "17:00"),
		},
		Booked: []domain.BookedInterval{booked(t, 1, "10:00", "10:30", domain.StatusConfirmed)},
		Now:    dayBefore,
	}

	var ten domain.CandidateSlot
	for _, s := range ResolveSlots(in) {
		if s.Time == "10:00" {
			ten = s
		}
	}
	assert.Equal(t, domain.SlotAvailable, ten.Status)
	assert.Equal(t, []int64{2}, ten.StaffIDs)

	staffID, ok := FirstFreeStaff(in, hm(t, "10:00"))
	require.True(t, ok)
	assert.Equal(t, int64(2), staffID)

	staffID, ok = FirstFreeStaff(in, hm(t, "11:00"))
	require.True(t, ok)
	assert.Equal(t, int64(1), staffID, "list order wins when both are free")
}

func TestFirstFreeStaff_NoneFree(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{1},
		Working:         []domain.WorkingInterval{working(t, 1, "09:00", "17:00")},
		Booked:          []domain.BookedInterval{booked(t, 1, "09:45", "10:15", domain.StatusPending)},
	}

	_, ok := FirstFreeStaff(in, hm(t, "10:00"))
	assert.False(t, ok)

	in.DurationMinutes = 0
	_, ok = FirstFreeStaff(in, hm(t, "12:00"))
	assert.False(t, ok)
}

func TestResolveSlots_EndsAtMidnight(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{3},
		Working:         []domain.WorkingInterval{working(t, 3, "20:00", "24:00")},
		Now:             dayBefore,
	}

	slots := ResolveSlots(in)

	require.Len(t, slots, 8)
	last := slots[len(slots)-1]
	assert.Equal(t, "23:30", last.Time)
	assert.Equal(t, domain.SlotAvailable, last.Status)
	assert.Equal(t, domain.ReasonNone, StaffStatus(in, 3, hm(t, "23:30")))
}

func TestOnGrid(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 30,
		StaffIDs:        []int64{1, 2},
		Working: []domain.WorkingInterval{
			working(t, 1, "09:15", "17:00"),
			working(t, 2, "10:00", "18:00"),
		},
	}

	tests := []struct {
		start string
		want  bool
	}{
		{start: "09:15", want: true},
		{start: "10:45", want: true},
		{start: "10:00", want: false},
		{start: "10:07", want: false},
		{start: "08:45", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			assert.Equal(t, tt.want, OnGrid(in, hm(t, tt.start)))
		})
	}

	for _, slot := range ResolveSlots(Input{Date: testDate, DurationMinutes: 30, StaffIDs: in.StaffIDs, Working: in.Working, Now: dayBefore}) {
		assert.True(t, OnGrid(in, slot.StartMinute), slot.Time)
	}

	in.StaffIDs = []int64{7}
	assert.False(t, OnGrid(in, hm(t, "09:15")), "nobody works")
}

func TestStaffStatus(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 60,
		StaffIDs:        []int64{1},
		Working:         []domain.WorkingInterval{working(t, 1, "09:00", "17:00")},
		Breaks:          []domain.BreakInterval{{StaffID: 1, DayOfWeek: time.Tuesday, StartMinute: hm(t, "13:00"), EndMinute: hm(t, "14:00")}},
		Booked:          []domain.BookedInterval{booked(t, 1, "10:00", "11:00", domain.StatusConfirmed)},
	}

	tests := []struct {
		name    string
		staffID int64
		start   string
		want    domain.SlotReason
	}{
		{name: "free", staffID: 1, start: "11:00", want: domain.ReasonNone},
		{name: "touching booking end", staffID: 1, start: "09:00", want: domain.ReasonNone},
		{name: "overlaps booking", staffID: 1, start: "09:30", want: domain.ReasonBooked},
		{name: "overlaps break", staffID: 1, start: "12:30", want: domain.ReasonBreak},
		{name: "before opening", staffID: 1, start: "08:30", want: domain.ReasonOutsideHours},
		{name: "runs past closing", staffID: 1, start: "16:30", want: domain.ReasonOutsideHours},
		{name: "unknown staff", staffID: 7, start: "11:00", want: domain.ReasonOutsideHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StaffStatus(in, tt.staffID, hm(t, tt.start)))
		})
	}
}

// Каждый доступный слот должен подтверждаться реально свободными мастерами.
func TestResolveSlots_NoFalseAvailability(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 90,
		StaffIDs:        []int64{1, 2, 3},
		Working: []domain.WorkingInterval{
			working(t, 1, "08:00", "14:00"),
			working(t, 2, "10:00", "18:00"),
			working(t, 3, "09:30", "12:30"),
		},
		Breaks: []domain.BreakInterval{
			{StaffID: 1, DayOfWeek: time.Tuesday, StartMinute: hm(t, "11:00"), EndMinute: hm(t, "11:45")},
			{StaffID: 2, DayOfWeek: time.Tuesday, StartMinute: hm(t, "13:00"), EndMinute: hm(t, "14:00")},
		},
		Booked: []domain.BookedInterval{
			booked(t, 1, "08:30", "09:15", domain.StatusConfirmed),
			booked(t, 2, "15:00", "16:20", domain.StatusPending),
			booked(t, 3, "10:00", "10:30", domain.StatusCompleted),
		},
		Now: dayBefore,
	}

	slots := ResolveSlots(in)
	require.NotEmpty(t, slots)

	for i, s := range slots {
		// полнота: старты подряд с шагом 30 минут от самого раннего открытия
		assert.Equal(t, hm(t, "08:00")+i*SlotStepMinutes, s.StartMinute)
		assert.Equal(t, types.FormatTime(s.StartMinute), s.Time)

		if !s.IsAvailable() {
			assert.Empty(t, s.StaffIDs)
			assert.NotEqual(t, domain.ReasonNone, s.Reason)
			continue
		}

		require.NotEmpty(t, s.StaffIDs)
		end := s.StartMinute + in.DurationMinutes
		for _, staffID := range s.StaffIDs {
			for _, w := range in.Working {
				if w.StaffID == staffID {
					assert.True(t, w.Contains(s.StartMinute, end), "slot %s outside hours of %d", s.Time, staffID)
				}
			}
			for _, b := range in.Breaks {
				if b.StaffID == staffID {
					assert.False(t, types.IsOverlap(s.StartMinute, end, b.StartMinute, b.EndMinute), "slot %s hits break of %d", s.Time, staffID)
				}
			}
			for _, b := range in.Booked {
				if b.StaffID == staffID {
					assert.False(t, types.IsOverlap(s.StartMinute, end, b.StartMinute, b.EndMinute), "slot %s hits booking of %d", s.Time, staffID)
				}
			}
		}
	}

	last := slots[len(slots)-1]
	assert.Equal(t, hm(t, "16:30"), last.StartMinute)
}

func TestResolveSlots_Idempotent(t *testing.T) {
	in := Input{
		Date:            testDate,
		DurationMinutes: 45,
		StaffIDs:        []int64{2, 1},
		Working: []domain.WorkingInterval{
			working(t, 1, "09:00", "13:00"),
			working(t, 2, "10:00", "15:00"),
		},
		Booked: []domain.BookedInterval{booked(t, 2, "11:00", "12:00", domain.StatusConfirmed)},
		Now:    time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC),
	}

	assert.Equal(t, ResolveSlots(in), ResolveSlots(in))
}
