package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randevux/booking-service/internal/availability"
	"github.com/randevux/booking-service/internal/domain"
	appointmentRepo "github.com/randevux/booking-service/internal/infra/storage/appointment"
	"github.com/randevux/booking-service/pkg/lock"
	"github.com/randevux/booking-service/pkg/logger"
	"github.com/randevux/booking-service/pkg/ptr"
	"github.com/randevux/booking-service/pkg/types"
)

// 2026-03-10 - вторник
var (
	testDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	testNow  = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
)

type testEnv struct {
	store    *fakeStore
	notifier *fakeNotifier
	metrics  *fakeMetrics
	uc       *UseCase
}

func newTestEnv(t *testing.T, locker Locker) *testEnv {
	t.Helper()

	store := newFakeStore()
	store.addService(10, "Haircut", 30, 1500)
	store.addService(11, "Beard trim", 30, 700)
	store.addService(12, "Coloring", 90, 4000)
	store.addStaff(1, "09:00", "17:00", 10, 11)
	store.addStaff(2, "09:00", "17:00", 10, 11, 12)

	if locker == nil {
		locker = lock.NoopLocker{}
	}

	env := &testEnv{
		store:    store,
		notifier: &fakeNotifier{},
		metrics:  &fakeMetrics{},
	}

	env.uc = NewUseCase(store, store, store, &fakeTxManager{}, locker, env.notifier, env.metrics, Options{
		LockTTL:            5 * time.Second,
		NotifyTimeout:      time.Second,
		AdvanceBookingDays: 30,
	}, logger.Nop())
	env.uc.timeProvider = fixedTime{now: testNow}

	return env
}

func request(staffID *int64, start string, serviceIDs ...int64) *Request {
	return &Request{
		BusinessID: 1,
		CustomerID: 100,
		StaffID:    staffID,
		ServiceIDs: serviceIDs,
		Date:       testDate,
		StartTime:  types.TimeString(start),
	}
}

func TestExecute_SpecificStaff(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := env.uc.Execute(context.Background(), request(ptr.Ptr(int64(1)), "10:00", 11, 10))
	require.NoError(t, err)
	env.uc.Wait()

	assert.Equal(t, int64(1), resp.StaffID)
	assert.Equal(t, types.TimeString("10:00"), resp.StartTime)
	assert.Equal(t, types.TimeString("11:00"), resp.EndTime)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, 2200.0, resp.TotalPrice)
	assert.Equal(t, domain.StatusPending, resp.Status)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Beard trim", resp.Items[0].ServiceName, "items keep request order")
	assert.Equal(t, 0, resp.Items[0].Position)
	assert.Equal(t, int64(10), resp.Items[1].ServiceID)

	assert.Equal(t, 1, env.notifier.count())
	assert.Equal(t, []string{"created/specific"}, env.metrics.outcomes)
}

func TestExecute_AnyStaffAssignsFreeStaff(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.addAppointment(1, testDate, "10:00", "10:30", domain.StatusConfirmed)

	resp, err := env.uc.Execute(context.Background(), request(nil, "10:00", 10))
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.StaffID)
	assert.Equal(t, []string{"created/any"}, env.metrics.outcomes)
}

func TestExecute_AnyStaffPrefersListOrder(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := env.uc.Execute(context.Background(), request(nil, "10:00", 10))
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.StaffID)
}

func TestExecute_AnyStaffOnlyCapableStaff(t *testing.T) {
	env := newTestEnv(t, nil)

	// окрашивание делает только мастер 2
	resp, err := env.uc.Execute(context.Background(), request(nil, "10:00", 10, 12))
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.StaffID)
	assert.Equal(t, 120, resp.DurationMinutes)
}

func TestExecute_SlotEndingAtMidnight(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.addStaff(3, "20:00", "24:00", 10)

	in, err := env.uc.loadCalendar(context.Background(), testDate, []int64{3}, 30, testNow)
	require.NoError(t, err)
	slots := availability.ResolveSlots(in)
	require.NotEmpty(t, slots)
	last := slots[len(slots)-1]
	assert.Equal(t, "23:30", last.Time)
	assert.Equal(t, domain.SlotAvailable, last.Status)

	resp, err := env.uc.Execute(context.Background(), request(ptr.Ptr(int64(3)), "23:30", 10))
	require.NoError(t, err)

	assert.Equal(t, types.TimeString("23:30"), resp.StartTime)
	assert.Equal(t, types.EndOfDay, resp.EndTime)
	assert.Equal(t, 1, env.store.appointmentCount())

	// последний слот теперь занят
	_, err = env.uc.Execute(context.Background(), request(ptr.Ptr(int64(3)), "23:30", 10))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_StartOffSlotGrid(t *testing.T) {
	for _, staffID := range []*int64{ptr.Ptr(int64(1)), nil} {
		env := newTestEnv(t, nil)

		_, err := env.uc.Execute(context.Background(), request(staffID, "10:07", 10))

		assert.ErrorIs(t, err, ErrInvalidTimeSlot)
		assert.Equal(t, 0, env.store.appointmentCount())
	}

	// сетка отсчитывается от начала работы самого мастера
	env := newTestEnv(t, nil)
	env.store.addStaff(3, "09:15", "17:00", 10)

	_, err := env.uc.Execute(context.Background(), request(ptr.Ptr(int64(3)), "10:00", 10))
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	resp, err := env.uc.Execute(context.Background(), request(ptr.Ptr(int64(3)), "10:15", 10))
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:45"), resp.EndTime)
}

func TestExecute_NotesLimitCountsCharacters(t *testing.T) {
	env := newTestEnv(t, nil)

	// "ş" занимает два байта, лимит в символах
	notes := strings.Repeat("ş", domain.MaxNotesLength)
	require.Greater(t, len(notes), domain.MaxNotesLength)

	req := request(nil, "10:00", 10)
	req.Notes = ptr.Ptr(notes)
	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, notes, *resp.Notes)

	req = request(nil, "11:00", 10)
	req.Notes = ptr.Ptr(notes + "ş")
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 1, env.store.appointmentCount())
}

func TestExecute_SecondSubmitterGetsConflict(t *testing.T) {
	env := newTestEnv(t, nil)
	req := request(ptr.Ptr(int64(1)), "10:00", 10)

	_, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTaken)

	// пересекающийся, но не совпадающий интервал
	_, err = env.uc.Execute(context.Background(), request(ptr.Ptr(int64(1)), "09:30", 10, 11))
	assert.ErrorIs(t, err, ErrSlotTaken)

	assert.Equal(t, 1, env.store.appointmentCount())
	assert.Equal(t, []string{"created/specific", "conflict/specific", "conflict/specific"}, env.metrics.outcomes)
}

func TestExecute_ConcurrentSubmittersOnlyOneWins(t *testing.T) {
	env := newTestEnv(t, nil)

	const submitters = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		taken   int
	)

	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.uc.Execute(context.Background(), request(ptr.Ptr(int64(2)), "14:00", 12))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrSlotTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	env.uc.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, submitters-1, taken)
	assert.Equal(t, 1, env.store.appointmentCount())
}

func TestExecute_AnyStaffFullyBooked(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.addAppointment(1, testDate, "09:45", "10:15", domain.StatusPending)
	env.store.addAppointment(2, testDate, "10:00", "11:00", domain.StatusConfirmed)

	_, err := env.uc.Execute(context.Background(), request(nil, "10:00", 10))

	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, []string{"conflict/any"}, env.metrics.outcomes)
}

func TestExecute_CancelledAppointmentDoesNotBlock(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.addAppointment(1, testDate, "10:00", "10:30", domain.StatusCancelled)
	env.store.addAppointment(1, testDate, "10:00", "10:30", domain.StatusNoShow)

	resp, err := env.uc.Execute(context.Background(), request(ptr.Ptr(int64(1)), "10:00", 10))

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.StaffID)
}

func TestExecute_StorageOverlapIsConflict(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.createErr = fmt.Errorf("%w: staff=1", appointmentRepo.ErrOverlap)

	_, err := env.uc.Execute(context.Background(), request(ptr.Ptr(int64(1)), "10:00", 10))

	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_StorageFailureIsInternal(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.createErr = errors.New("connection reset")

	_, err := env.uc.Execute(context.Background(), request(ptr.Ptr(int64(1)), "10:00", 10))

	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, []string{"error/specific"}, env.metrics.outcomes)
	assert.Equal(t, 0, env.notifier.count())
}

func TestExecute_LockHeldByAnotherSubmission(t *testing.T) {
	mr := miniredis.RunT(t)
	locker, err := lock.NewRedisLock(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = locker.Close() })

	env := newTestEnv(t, locker)

	_, ok, err := locker.Lock(context.Background(), "appointments:1:2026-03-10", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.uc.Execute(context.Background(), request(nil, "10:00", 10))
	assert.ErrorIs(t, err, ErrBookingInProgress)
	assert.Equal(t, []string{"conflict/any"}, env.metrics.outcomes)

	// другие дни не затронуты
	other := request(nil, "10:00", 10)
	other.Date = testDate.AddDate(0, 0, 1)
	_, err = env.uc.Execute(context.Background(), other)
	require.NoError(t, err)
}

func TestExecute_LockReleasedAfterBooking(t *testing.T) {
	mr := miniredis.RunT(t)
	locker, err := lock.NewRedisLock(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = locker.Close() })

	env := newTestEnv(t, locker)

	_, err = env.uc.Execute(context.Background(), request(nil, "10:00", 10))
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), request(nil, "11:00", 10))
	require.NoError(t, err)

	assert.Empty(t, mr.Keys())
}

func TestExecute_NotifierFailureDoesNotFailBooking(t *testing.T) {
	env := newTestEnv(t, nil)
	env.notifier.err = errors.New("broker down")

	resp, err := env.uc.Execute(context.Background(), request(nil, "10:00", 10))
	env.uc.Wait()

	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, 1, env.notifier.count())
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(env *testEnv, req *Request)
		wantErr error
	}{
		{
			name:    "missing customer",
			modify:  func(_ *testEnv, req *Request) { req.CustomerID = 0 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "no services",
			modify:  func(_ *testEnv, req *Request) { req.ServiceIDs = nil },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "duplicate service",
			modify:  func(_ *testEnv, req *Request) { req.ServiceIDs = []int64{10, 10} },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "malformed start time",
			modify:  func(_ *testEnv, req *Request) { req.StartTime = "9:00" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "notes too long",
			modify:  func(_ *testEnv, req *Request) { req.Notes = ptr.Ptr(string(make([]byte, domain.MaxNotesLength+1))) },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown business",
			modify:  func(_ *testEnv, req *Request) { req.BusinessID = 404 },
			wantErr: ErrBusinessNotFound,
		},
		{
			name:    "past date",
			modify:  func(_ *testEnv, req *Request) { req.Date = testNow.AddDate(0, 0, -1) },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "beyond advance window",
			modify:  func(_ *testEnv, req *Request) { req.Date = testNow.AddDate(0, 0, 31) },
			wantErr: ErrDateTooFarInFuture,
		},
		{
			name: "today start already passed",
			modify: func(_ *testEnv, req *Request) {
				req.Date = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
				req.StartTime = "12:00"
			},
			wantErr: ErrTooLateToBook,
		},
		{
			name:    "unknown service",
			modify:  func(_ *testEnv, req *Request) { req.ServiceIDs = []int64{10, 99} },
			wantErr: ErrServiceNotFound,
		},
		{
			name:    "staff cannot perform service",
			modify:  func(_ *testEnv, req *Request) { req.StaffID = ptr.Ptr(int64(1)); req.ServiceIDs = []int64{12} },
			wantErr: ErrStaffNotCapable,
		},
		{
			name:    "before opening",
			modify:  func(_ *testEnv, req *Request) { req.StaffID = ptr.Ptr(int64(1)); req.StartTime = "08:30" },
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name: "during break",
			modify: func(env *testEnv, req *Request) {
				env.store.breaks = append(env.store.breaks, domain.BreakInterval{StaffID: 1, DayOfWeek: time.Tuesday, StartMinute: 12 * 60, EndMinute: 13 * 60})
				req.StaffID = ptr.Ptr(int64(1))
				req.StartTime = "12:30"
			},
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name:    "runs past midnight",
			modify:  func(_ *testEnv, req *Request) { req.StartTime = "23:30"; req.ServiceIDs = []int64{10, 11} },
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name: "nobody performs the combination",
			modify: func(env *testEnv, req *Request) {
				env.store.addService(13, "Massage", 60, 3000)
				req.ServiceIDs = []int64{13}
			},
			wantErr: ErrSlotTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			req := request(nil, "10:00", 10)
			tt.modify(env, req)

			_, err := env.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, env.store.appointmentCount())
		})
	}
}

func TestExecute_DateEvaluatedInBusinessTimezone(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.businesses[1].Timezone = "Europe/Istanbul"

	// 22:30 UTC 9-го в Стамбуле уже 01:30 10-го
	env.uc.timeProvider = fixedTime{now: time.Date(2026, 3, 9, 22, 30, 0, 0, time.UTC)}

	yesterday := request(nil, "10:00", 10)
	yesterday.Date = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	_, err := env.uc.Execute(context.Background(), yesterday)
	assert.ErrorIs(t, err, ErrInvalidDate)

	early := request(nil, "01:00", 10)
	_, err = env.uc.Execute(context.Background(), early)
	assert.ErrorIs(t, err, ErrTooLateToBook)

	_, err = env.uc.Execute(context.Background(), request(nil, "10:00", 10))
	assert.NoError(t, err)
}
