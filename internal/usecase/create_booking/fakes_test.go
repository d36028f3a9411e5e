package create_booking

import (
	"context"
	"sync"
	"time"

	"github.com/randevux/booking-service/internal/domain"
	catalogRepo "github.com/randevux/booking-service/internal/infra/storage/catalog"
	"github.com/randevux/booking-service/pkg/types"
)

// fakeStore in-memory реализация всех репозиториев use case
type fakeStore struct {
	mu sync.Mutex

	businesses   map[int64]*domain.Business
	services     map[int64]*domain.Service
	staff        []*domain.Staff
	capabilities map[int64][]int64 // id мастера -> id услуг
	working      []domain.WorkingInterval
	breaks       []domain.BreakInterval
	appointments []*domain.Appointment
	nextID       int64

	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		businesses:   map[int64]*domain.Business{1: {ID: 1, OwnerID: 77, Name: "Studio Nova", Timezone: "UTC"}},
		services:     make(map[int64]*domain.Service),
		capabilities: make(map[int64][]int64),
		nextID:       1,
	}
}

func (s *fakeStore) addService(id int64, name string, duration int, price float64) {
	s.services[id] = &domain.Service{ID: id, BusinessID: 1, Name: name, DurationMinutes: duration, Price: price, IsActive: true}
}

func (s *fakeStore) addStaff(id int64, start, end string, serviceIDs ...int64) {
	s.staff = append(s.staff, &domain.Staff{ID: id, BusinessID: 1, Name: "staff", IsActive: true, SortOrder: len(s.staff)})
	s.capabilities[id] = serviceIDs

	startMinute, _ := types.ParseTime(start)
	endMinute, _ := types.ParseEndTime(end)
	for day := time.Sunday; day <= time.Saturday; day++ {
		s.working = append(s.working, domain.WorkingInterval{
			StaffID:     id,
			DayOfWeek:   day,
			IsWorking:   true,
			StartMinute: startMinute,
			EndMinute:   endMinute,
		})
	}
}

func (s *fakeStore) addAppointment(staffID int64, date time.Time, start, end types.TimeString, status domain.AppointmentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appointments = append(s.appointments, &domain.Appointment{
		ID:         s.nextID,
		BusinessID: 1,
		StaffID:    staffID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Status:     status,
	})
	s.nextID++
}

func (s *fakeStore) appointmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appointments)
}

func (s *fakeStore) GetBusiness(_ context.Context, id int64) (*domain.Business, error) {
	b, ok := s.businesses[id]
	if !ok {
		return nil, catalogRepo.ErrBusinessNotFound
	}
	return b, nil
}

func (s *fakeStore) GetServices(_ context.Context, businessID int64, ids []int64) ([]*domain.Service, error) {
	out := make([]*domain.Service, 0)
	for _, id := range ids {
		if svc, ok := s.services[id]; ok && svc.BusinessID == businessID && svc.IsActive {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (s *fakeStore) ListCapableStaff(_ context.Context, businessID int64, serviceIDs []int64) ([]*domain.Staff, error) {
	out := make([]*domain.Staff, 0)
	for _, st := range s.staff {
		if st.BusinessID != businessID || !st.IsActive {
			continue
		}
		if coversAll(s.capabilities[st.ID], serviceIDs) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *fakeStore) ListWorking(_ context.Context, staffIDs []int64, weekday time.Weekday) ([]domain.WorkingInterval, error) {
	out := make([]domain.WorkingInterval, 0)
	for _, w := range s.working {
		if w.DayOfWeek == weekday && contains(staffIDs, w.StaffID) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *fakeStore) ListBreaks(_ context.Context, staffIDs []int64, weekday time.Weekday) ([]domain.BreakInterval, error) {
	out := make([]domain.BreakInterval, 0)
	for _, b := range s.breaks {
		if b.DayOfWeek == weekday && contains(staffIDs, b.StaffID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) ListBooked(_ context.Context, staffIDs []int64, date time.Time) ([]domain.BookedInterval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.BookedInterval, 0)
	for _, a := range s.appointments {
		if a.IsActive() && contains(staffIDs, a.StaffID) && a.Date.Equal(date) {
			out = append(out, a.BookedInterval())
		}
	}
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}

	appt.ID = s.nextID
	appt.CreatedAt = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	s.nextID++
	s.appointments = append(s.appointments, appt)
	return appt, nil
}

// fakeTxManager выполняет транзакции по очереди, как SERIALIZABLE
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []*domain.Appointment
	err    error
}

func (n *fakeNotifier) AppointmentCreated(_ context.Context, appt *domain.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, appt)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *fakeMetrics) ObserveBooking(outcome, staffSelection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome+"/"+staffSelection)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func coversAll(have, want []int64) bool {
	for _, id := range want {
		if !contains(have, id) {
			return false
		}
	}
	return true
}
