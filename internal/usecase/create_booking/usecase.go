package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/randevux/booking-service/internal/availability"
	"github.com/randevux/booking-service/internal/domain"
	appointmentRepo "github.com/randevux/booking-service/internal/infra/storage/appointment"
	catalogRepo "github.com/randevux/booking-service/internal/infra/storage/catalog"
	"github.com/randevux/booking-service/pkg/metrics"
	"github.com/randevux/booking-service/pkg/txmanager"
)

const (
	selectionAny      = "any"
	selectionSpecific = "specific"
)

// UseCase use case для создания бронирования.
// Финальная проверка доступности и вставка идут в одной serializable транзакции,
// exclusion constraint на appointments ловит то, что проскочит мимо нее.
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	scheduleRepo    ScheduleRepository
	txManager       TransactionManager
	locker          Locker
	notifier        Notifier
	metrics         Metrics
	opts            Options
	timeProvider    TimeProvider
	logger          Logger

	notifications sync.WaitGroup
}

// NewUseCase создает новый use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	scheduleRepo ScheduleRepository,
	txManager TransactionManager,
	locker Locker,
	notifier Notifier,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		scheduleRepo:    scheduleRepo,
		txManager:       txManager,
		locker:          locker,
		notifier:        notifier,
		metrics:         metrics,
		opts:            opts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute валидирует запрос, перепроверяет доступность на живых данных и сохраняет запись в статусе pending
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	selection := selectionAny
	if req.StaffID != nil {
		selection = selectionSpecific
	}

	resp, err := uc.execute(ctx, req)
	uc.metrics.ObserveBooking(outcome(err), selection)

	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, business=%d, staff=%s, services=%v, date=%s, time=%s",
		req.CustomerID, req.BusinessID, staffLabel(req.StaffID), req.ServiceIDs, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем компанию, ее часовой пояс определяет "сегодня"
	business, err := uc.catalogRepo.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			uc.logger.Warn("CreateBooking: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CreateBooking: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now().In(business.Location())

	// 3. Проверяем дату и время
	if err := validateDate(req.Date, now, uc.opts.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	if err := validateStartTime(req.Date, req.StartTime, now); err != nil {
		uc.logger.Warn("CreateBooking: start time validation failed: %v", err)
		return nil, err
	}

	// 4. Услуги и общая длительность
	found, err := uc.catalogRepo.GetServices(ctx, req.BusinessID, req.ServiceIDs)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get services: %v", err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}

	services, err := orderServices(req.ServiceIDs, found)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	duration := domain.TotalDuration(services)
	startMinute := req.StartTime.Minutes()
	endTime, err := req.StartTime.AddMinutes(duration)
	if err != nil {
		uc.logger.Warn("CreateBooking: %s + %d minutes runs past midnight", req.StartTime, duration)
		return nil, fmt.Errorf("%w: appointment must end by midnight", ErrInvalidTimeSlot)
	}

	// 5. Мастера-кандидаты
	candidates, err := uc.candidateStaff(ctx, req)
	if err != nil {
		return nil, err
	}

	// 6. Блокировка на день компании
	lockKey := fmt.Sprintf("appointments:%d:%s", req.BusinessID, req.Date.Format(domain.DateFormat))
	release, err := uc.acquireLock(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	defer release()

	var created *domain.Appointment

	// 7. Перепроверка и вставка в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		in, err := uc.loadCalendar(txCtx, req.Date, candidates, duration, now)
		if err != nil {
			return err
		}

		staffID, err := uc.pickStaff(in, req, startMinute)
		if err != nil {
			return err
		}

		appt := &domain.Appointment{
			BusinessID:      req.BusinessID,
			StaffID:         staffID,
			CustomerID:      req.CustomerID,
			Date:            dateOnly(req.Date),
			StartTime:       req.StartTime,
			EndTime:         endTime,
			DurationMinutes: duration,
			TotalPrice:      domain.TotalPrice(services),
			Status:          domain.StatusPending,
			Notes:           req.Notes,
			Items:           snapshotItems(services),
		}

		created, err = uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrOverlap) || txmanager.IsSerializationFailure(err) {
				uc.logger.Warn("CreateBooking: staff=%d %s %s taken by a concurrent booking", staffID, req.Date.Format(domain.DateFormat), req.StartTime)
				return ErrSlotTaken
			}
			uc.logger.Error("CreateBooking: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("CreateBooking: serialization failure, reporting slot as taken: %v", err)
			return nil, ErrSlotTaken
		}
		if errors.Is(err, txmanager.ErrBeginTx) || errors.Is(err, txmanager.ErrCommitTx) {
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: created appointment id=%d staff=%d %s %s-%s",
		created.ID, created.StaffID, created.Date.Format(domain.DateFormat), created.StartTime, created.EndTime)

	// 8. Уведомляем в фоне, запись уже закоммичена
	uc.notify(ctx, created)

	return newResponse(created), nil
}

// Wait ждет завершения фоновых уведомлений
func (uc *UseCase) Wait() {
	uc.notifications.Wait()
}

func (uc *UseCase) candidateStaff(ctx context.Context, req *Request) ([]int64, error) {
	staff, err := uc.catalogRepo.ListCapableStaff(ctx, req.BusinessID, req.ServiceIDs)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list staff: %v", err)
		return nil, fmt.Errorf("%w: failed to list staff: %v", ErrInternal, err)
	}

	if req.StaffID != nil {
		for _, s := range staff {
			if s.ID == *req.StaffID {
				return []int64{s.ID}, nil
			}
		}
		uc.logger.Warn("CreateBooking: staff id=%d cannot perform services %v", *req.StaffID, req.ServiceIDs)
		return nil, ErrStaffNotCapable
	}

	if len(staff) == 0 {
		uc.logger.Warn("CreateBooking: nobody in business id=%d performs services %v", req.BusinessID, req.ServiceIDs)
		return nil, fmt.Errorf("%w: no staff can perform the requested services", ErrSlotTaken)
	}

	ids := make([]int64, 0, len(staff))
	for _, s := range staff {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// acquireLock берет блокировку на день компании.
// Если хранилище блокировок недоступно, пишем в лог и полагаемся только на защиту в БД.
func (uc *UseCase) acquireLock(ctx context.Context, key string) (func(), error) {
	token, ok, err := uc.locker.Lock(ctx, key, uc.opts.LockTTL)
	if err != nil {
		uc.logger.Warn("CreateBooking: lock %s unavailable, continuing without it: %v", key, err)
		return func() {}, nil
	}
	if !ok {
		uc.logger.Warn("CreateBooking: lock %s is held by another submission", key)
		return nil, ErrBookingInProgress
	}

	return func() {
		if err := uc.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			uc.logger.Warn("CreateBooking: failed to release lock %s: %v", key, err)
		}
	}, nil
}

func (uc *UseCase) loadCalendar(ctx context.Context, date time.Time, staffIDs []int64, duration int, now time.Time) (availability.Input, error) {
	weekday := date.Weekday()

	working, err := uc.scheduleRepo.ListWorking(ctx, staffIDs, weekday)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get working hours: %v", err)
		return availability.Input{}, fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
	}

	breaks, err := uc.scheduleRepo.ListBreaks(ctx, staffIDs, weekday)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get breaks: %v", err)
		return availability.Input{}, fmt.Errorf("%w: failed to get breaks: %v", ErrInternal, err)
	}

	booked, err := uc.appointmentRepo.ListBooked(ctx, staffIDs, dateOnly(date))
	if err != nil {
		if txmanager.IsSerializationFailure(err) {
			return availability.Input{}, ErrSlotTaken
		}
		uc.logger.Error("CreateBooking: failed to get booked intervals: %v", err)
		return availability.Input{}, fmt.Errorf("%w: failed to get booked intervals: %v", ErrInternal, err)
	}

	return availability.Input{
		Date:            dateOnly(date),
		DurationMinutes: duration,
		StaffIDs:        staffIDs,
		Working:         working,
		Breaks:          breaks,
		Booked:          booked,
		Now:             now,
	}, nil
}

func (uc *UseCase) pickStaff(in availability.Input, req *Request, startMinute int) (int64, error) {
	if !availability.OnGrid(in, startMinute) {
		uc.logger.Warn("CreateBooking: %s is not a slot start for staff %v", req.StartTime, in.StaffIDs)
		return 0, fmt.Errorf("%w: start time is not on the %d-minute slot grid", ErrInvalidTimeSlot, availability.SlotStepMinutes)
	}

	if req.StaffID == nil {
		staffID, ok := availability.FirstFreeStaff(in, startMinute)
		if !ok {
			uc.logger.Warn("CreateBooking: no free staff at %s", req.StartTime)
			return 0, ErrSlotTaken
		}
		return staffID, nil
	}

	switch reason := availability.StaffStatus(in, *req.StaffID, startMinute); reason {
	case domain.ReasonNone:
		return *req.StaffID, nil
	case domain.ReasonBooked:
		uc.logger.Warn("CreateBooking: staff=%d already booked at %s", *req.StaffID, req.StartTime)
		return 0, ErrSlotTaken
	default:
		uc.logger.Warn("CreateBooking: staff=%d unavailable at %s: %s", *req.StaffID, req.StartTime, reason)
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeSlot, reason)
	}
}

func (uc *UseCase) notify(ctx context.Context, appt *domain.Appointment) {
	uc.notifications.Add(1)
	go func() {
		defer uc.notifications.Done()

		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.opts.NotifyTimeout)
		defer cancel()

		if err := uc.notifier.AppointmentCreated(notifyCtx, appt); err != nil {
			uc.logger.Error("CreateBooking: failed to notify about appointment id=%d: %v", appt.ID, err)
		}
	}()
}

func snapshotItems(services []*domain.Service) []domain.AppointmentItem {
	items := make([]domain.AppointmentItem, 0, len(services))
	for i, s := range services {
		items = append(items, domain.AppointmentItem{
			ServiceID:       s.ID,
			ServiceName:     s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
			Position:        i,
		})
	}
	return items
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.BookingCreated
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrBookingInProgress):
		return metrics.BookingConflict
	case errors.Is(err, ErrInternal):
		return metrics.BookingError
	default:
		return metrics.BookingRejected
	}
}

func staffLabel(staffID *int64) string {
	if staffID == nil {
		return selectionAny
	}
	return strconv.FormatInt(*staffID, 10)
}
