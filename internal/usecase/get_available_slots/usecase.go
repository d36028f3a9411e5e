package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/randevux/booking-service/internal/availability"
	"github.com/randevux/booking-service/internal/domain"
	catalogRepo "github.com/randevux/booking-service/internal/infra/storage/catalog"
)

// UseCase use case для получения доступных слотов
type UseCase struct {
	appointmentRepo    AppointmentRepository
	catalogRepo        CatalogRepository
	scheduleRepo       ScheduleRepository
	advanceBookingDays int
	timeProvider       TimeProvider
	logger             Logger
}

// NewUseCase создает новый use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	scheduleRepo ScheduleRepository,
	advanceBookingDays int,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo:    appointmentRepo,
		catalogRepo:        catalogRepo,
		scheduleRepo:       scheduleRepo,
		advanceBookingDays: advanceBookingDays,
		timeProvider:       &RealTimeProvider{},
		logger:             logger,
	}
}

// Execute выполняет запрос доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: business=%d, services=%v, date=%s",
		req.BusinessID, req.ServiceIDs, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Компания и ее локальное время
	business, err := uc.catalogRepo.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			uc.logger.Warn("GetAvailableSlots: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now().In(business.Location())

	if err := validateDate(req.Date, now, uc.advanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Услуги и общая длительность
	services, err := uc.catalogRepo.GetServices(ctx, req.BusinessID, req.ServiceIDs)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get services: %v", err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}
	if len(services) != len(req.ServiceIDs) {
		uc.logger.Warn("GetAvailableSlots: found %d of %d services", len(services), len(req.ServiceIDs))
		return nil, ErrServiceNotFound
	}

	duration := domain.TotalDuration(services)

	resp := &Response{
		Date:            req.Date,
		BusinessID:      req.BusinessID,
		StaffID:         req.StaffID,
		DurationMinutes: duration,
		Slots:           []domain.CandidateSlot{},
	}

	// 4. Мастера-кандидаты
	staffIDs, err := uc.candidateStaff(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(staffIDs) == 0 {
		uc.logger.Info("GetAvailableSlots: nobody in business id=%d performs services %v", req.BusinessID, req.ServiceIDs)
		return resp, nil
	}

	// 5. Данные календаря, параллельно
	in, err := uc.loadCalendar(ctx, req, staffIDs, duration)
	if err != nil {
		return nil, err
	}
	in.Now = now

	// 6. Считаем слоты
	resp.Slots = availability.ResolveSlots(in)

	uc.logger.Info("GetAvailableSlots: resolved %d slots for business=%d, date=%s",
		len(resp.Slots), req.BusinessID, req.Date.Format(domain.DateFormat))

	return resp, nil
}

func (uc *UseCase) candidateStaff(ctx context.Context, req *Request) ([]int64, error) {
	staff, err := uc.catalogRepo.ListCapableStaff(ctx, req.BusinessID, req.ServiceIDs)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list staff: %v", err)
		return nil, fmt.Errorf("%w: failed to list staff: %v", ErrInternal, err)
	}

	if req.StaffID != nil {
		for _, s := range staff {
			if s.ID == *req.StaffID {
				return []int64{s.ID}, nil
			}
		}
		uc.logger.Warn("GetAvailableSlots: staff id=%d cannot perform services %v", *req.StaffID, req.ServiceIDs)
		return nil, ErrStaffNotCapable
	}

	ids := make([]int64, 0, len(staff))
	for _, s := range staff {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func (uc *UseCase) loadCalendar(ctx context.Context, req *Request, staffIDs []int64, duration int) (availability.Input, error) {
	date := dateOnly(req.Date)
	weekday := date.Weekday()

	in := availability.Input{
		Date:            date,
		DurationMinutes: duration,
		StaffIDs:        staffIDs,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		working, err := uc.scheduleRepo.ListWorking(gCtx, staffIDs, weekday)
		if err != nil {
			return fmt.Errorf("working hours: %w", err)
		}
		in.Working = working
		return nil
	})

	g.Go(func() error {
		breaks, err := uc.scheduleRepo.ListBreaks(gCtx, staffIDs, weekday)
		if err != nil {
			return fmt.Errorf("breaks: %w", err)
		}
		in.Breaks = breaks
		return nil
	})

	g.Go(func() error {
		booked, err := uc.appointmentRepo.ListBooked(gCtx, staffIDs, date)
		if err != nil {
			return fmt.Errorf("booked intervals: %w", err)
		}
		in.Booked = booked
		return nil
	})

	if err := g.Wait(); err != nil {
		uc.logger.Error("GetAvailableSlots: failed to load calendar: %v", err)
		return availability.Input{}, fmt.Errorf("%w: failed to load calendar: %v", ErrInternal, err)
	}

	return in, nil
}
