package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/randevux/booking-service/internal/domain"
	catalogRepo "github.com/randevux/booking-service/internal/infra/storage/catalog"
	"github.com/randevux/booking-service/internal/service/schedule/models"
	"github.com/randevux/booking-service/pkg/types"
)

// Service сервис для работы с расписаниями мастеров
type Service struct {
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый сервис расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		catalogRepo:  catalogRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetStaffSchedule расписание мастера на семь дней
func (s *Service) GetStaffSchedule(ctx context.Context, businessID, staffID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("GetStaffSchedule: business=%d, staff=%d", businessID, staffID)

	if _, err := s.getStaff(ctx, "GetStaffSchedule", businessID, staffID); err != nil {
		return nil, err
	}

	// Часы и перерывы читаем из одного снимка
	var (
		working []domain.WorkingInterval
		breaks  []domain.BreakInterval
	)
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if working, err = s.scheduleRepo.ListWorkingWeek(txCtx, staffID); err != nil {
			return fmt.Errorf("working hours: %w", err)
		}
		if breaks, err = s.scheduleRepo.ListBreaksWeek(txCtx, staffID); err != nil {
			return fmt.Errorf("breaks: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("GetStaffSchedule: failed to read schedule of staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: GetStaffSchedule - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(businessID, &domain.WeeklySchedule{
		StaffID: staffID,
		Days:    working,
		Breaks:  breaks,
	}), nil
}

// UpdateStaffSchedule заменяет расписание на неделю целиком.
// Доступно владельцу компании и самому мастеру.
func (s *Service) UpdateStaffSchedule(ctx context.Context, businessID, staffID int64, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("UpdateStaffSchedule: business=%d, staff=%d, user=%d, days=%d", businessID, staffID, req.UserID, len(req.Days))

	// 1. Валидируем и конвертируем
	days, breaks, err := buildWeek(staffID, req.Days)
	if err != nil {
		s.logger.Warn("UpdateStaffSchedule: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем права
	business, err := s.catalogRepo.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			s.logger.Warn("UpdateStaffSchedule: business id=%d not found", businessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("UpdateStaffSchedule: failed to get business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: UpdateStaffSchedule - failed to get business: %v", ErrInternal, err)
	}

	staff, err := s.getStaff(ctx, "UpdateStaffSchedule", businessID, staffID)
	if err != nil {
		return nil, err
	}

	isSelf := staff.UserID != nil && *staff.UserID == req.UserID
	if business.OwnerID != req.UserID && !isSelf {
		s.logger.Warn("UpdateStaffSchedule: user=%d cannot edit schedule of staff=%d", req.UserID, staffID)
		return nil, ErrAccessDenied
	}

	// 3. Заменяем в одной транзакции
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		for _, w := range days {
			if err := s.scheduleRepo.UpsertWorkingHours(txCtx, w); err != nil {
				return err
			}
		}
		return s.scheduleRepo.ReplaceBreaks(txCtx, staffID, breaks)
	})
	if err != nil {
		s.logger.Error("UpdateStaffSchedule: failed to store schedule for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: UpdateStaffSchedule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStaffSchedule: stored schedule for staff=%d", staffID)

	return models.FromDomainSchedule(businessID, &domain.WeeklySchedule{
		StaffID: staffID,
		Days:    days,
		Breaks:  breaks,
	}), nil
}

func (s *Service) getStaff(ctx context.Context, op string, businessID, staffID int64) (*domain.Staff, error) {
	staff, err := s.catalogRepo.GetStaff(ctx, businessID, staffID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrStaffNotFound) {
			s.logger.Warn("%s: staff id=%d not found in business=%d", op, staffID, businessID)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("%s: failed to get staff id=%d: %v", op, staffID, err)
		return nil, fmt.Errorf("%w: %s - failed to get staff: %v", ErrInternal, op, err)
	}
	return staff, nil
}

// buildWeek валидирует запрос и разворачивает его в семь строк
func buildWeek(staffID int64, requested []models.DaySchedule) ([]domain.WorkingInterval, []domain.BreakInterval, error) {
	byDay := make(map[time.Weekday]domain.WorkingInterval, len(requested))
	breaks := make([]domain.BreakInterval, 0)

	for _, d := range requested {
		if d.DayOfWeek < int(time.Sunday) || d.DayOfWeek > int(time.Saturday) {
			return nil, nil, fmt.Errorf("%w: dayOfWeek %d out of range 0-6", ErrInvalidSchedule, d.DayOfWeek)
		}

		w, dayBreaks, err := d.ToDomain(staffID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}

		if _, dup := byDay[w.DayOfWeek]; dup {
			return nil, nil, fmt.Errorf("%w: day %d listed twice", ErrInvalidSchedule, d.DayOfWeek)
		}

		if !w.IsValid() {
			return nil, nil, fmt.Errorf("%w: day %d: start must be before end", ErrInvalidSchedule, d.DayOfWeek)
		}

		if err := validateBreaks(w, dayBreaks); err != nil {
			return nil, nil, err
		}

		byDay[w.DayOfWeek] = w
		breaks = append(breaks, dayBreaks...)
	}

	days := make([]domain.WorkingInterval, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		w, ok := byDay[day]
		if !ok {
			w = domain.WorkingInterval{StaffID: staffID, DayOfWeek: day}
		}
		days = append(days, w)
	}

	return days, breaks, nil
}

// validateBreaks перерывы внутри рабочих часов и не пересекаются между собой
func validateBreaks(w domain.WorkingInterval, breaks []domain.BreakInterval) error {
	if len(breaks) == 0 {
		return nil
	}

	if !w.IsWorking {
		return fmt.Errorf("%w: day %d: breaks on a day off", ErrInvalidSchedule, w.DayOfWeek)
	}

	sorted := make([]domain.BreakInterval, len(breaks))
	copy(sorted, breaks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartMinute < sorted[j].StartMinute })

	for i, b := range sorted {
		if b.StartMinute >= b.EndMinute {
			return fmt.Errorf("%w: day %d: break must start before it ends", ErrInvalidSchedule, w.DayOfWeek)
		}
		if !w.Contains(b.StartMinute, b.EndMinute) {
			return fmt.Errorf("%w: day %d: break %s-%s outside working hours", ErrInvalidSchedule,
				w.DayOfWeek, types.FormatTime(b.StartMinute), types.FormatTime(b.EndMinute))
		}
		if i > 0 && types.IsOverlap(sorted[i-1].StartMinute, sorted[i-1].EndMinute, b.StartMinute, b.EndMinute) {
			return fmt.Errorf("%w: day %d: breaks overlap", ErrInvalidSchedule, w.DayOfWeek)
		}
	}

	return nil
}
