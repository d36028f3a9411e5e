package appointments

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/randevux/booking-service/internal/domain"
	appointmentRepo "github.com/randevux/booking-service/internal/infra/storage/appointment"
	catalogRepo "github.com/randevux/booking-service/internal/infra/storage/catalog"
	"github.com/randevux/booking-service/internal/service/appointments/models"
)

// Service сервис для работы с существующими записями
type Service struct {
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	txManager       TransactionManager
	logger          Logger
}

// NewService создает новый сервис записей
func NewService(
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// GetByID возвращает запись, доступную клиенту, владельцу компании и мастерам
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, userID)

	appt, err := s.getAppointment(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if appt.CustomerID != userID {
		if err := s.checkBusinessAccess(ctx, appt.BusinessID, userID); err != nil {
			s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", userID, id)
			return nil, err
		}
	}

	return models.FromDomainAppointment(appt), nil
}

// GetCustomerAppointments история клиента, сначала новые
func (s *Service) GetCustomerAppointments(ctx context.Context, req *models.GetCustomerAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetCustomerAppointments: customer=%d, user=%d, status=%v", req.CustomerID, req.UserID, req.Status)

	if req.UserID != req.CustomerID {
		s.logger.Warn("GetCustomerAppointments: user=%d cannot read appointments of customer=%d", req.UserID, req.CustomerID)
		return nil, ErrAccessDenied
	}

	var status *domain.AppointmentStatus
	if req.Status != nil {
		parsed, err := models.ToDomainStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerAppointments: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &parsed
	}

	appointments, err := s.appointmentRepo.GetByCustomer(ctx, req.CustomerID, status)
	if err != nil {
		s.logger.Error("GetCustomerAppointments: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerAppointments: fetched %d appointments for customer=%d", len(appointments), req.CustomerID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetBusinessAppointments записи компании для владельца и мастеров.
// Один день сортируется по времени начала, иначе сначала новые.
func (s *Service) GetBusinessAppointments(ctx context.Context, req *models.GetBusinessAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetBusinessAppointments: business=%d, user=%d, staff=%v, status=%v, includeInactive=%t",
		req.BusinessID, req.UserID, req.StaffID, req.Status, req.IncludeInactive)

	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		s.logger.Warn("GetBusinessAppointments: start date after end date")
		return nil, ErrInvalidTimeRange
	}

	if err := s.checkBusinessAccess(ctx, req.BusinessID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetBusinessAppointments: invalid filter for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBusinessAppointments: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: GetBusinessAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetBusinessAppointments: fetched %d appointments for business=%d", len(appointments), req.BusinessID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Cancel отменяет pending или confirmed запись от имени клиента или компании
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelAppointmentRequest) error {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", id, req.UserID)

	if utf8.RuneCountInString(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		appt, err := s.getAppointment(txCtx, "Cancel", id)
		if err != nil {
			return err
		}

		if appt.CustomerID != req.UserID {
			if err := s.checkBusinessAccess(txCtx, appt.BusinessID, req.UserID); err != nil {
				s.logger.Warn("Cancel: access denied for user=%d to appointment id=%d", req.UserID, id)
				return err
			}
		}

		if !appt.CanBeCancelled() {
			s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", id, appt.Status)
			return ErrCannotCancel
		}

		if err := s.appointmentRepo.Cancel(txCtx, id, req.CancellationReason); err != nil {
			return s.mapWriteError("Cancel", id, err)
		}

		s.logger.Info("Cancel: cancelled appointment id=%d", id)
		return nil
	})
}

// UpdateStatus меняет статус записи, только для владельца и мастеров
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s by user=%d", id, req.Status, req.UserID)

	newStatus, err := models.ToDomainStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, id)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		appt, err := s.getAppointment(txCtx, "UpdateStatus", id)
		if err != nil {
			return err
		}

		if err := s.checkBusinessAccess(txCtx, appt.BusinessID, req.UserID); err != nil {
			return err
		}

		if !appt.Status.CanTransitionTo(newStatus) {
			s.logger.Warn("UpdateStatus: appointment id=%d cannot move %s -> %s", id, appt.Status, newStatus)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, newStatus)
		}

		if err := s.appointmentRepo.UpdateStatus(txCtx, id, newStatus); err != nil {
			return s.mapWriteError("UpdateStatus", id, err)
		}

		s.logger.Info("UpdateStatus: appointment id=%d is now %s", id, newStatus)
		return nil
	})
}

func (s *Service) getAppointment(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appt, nil
}

func (s *Service) mapWriteError(op string, id int64, err error) error {
	if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
		s.logger.Warn("%s: appointment id=%d disappeared during update", op, id)
		return ErrAppointmentNotFound
	}
	s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// checkBusinessAccess пропускает владельца компании и активных мастеров, привязанных к userID
func (s *Service) checkBusinessAccess(ctx context.Context, businessID, userID int64) error {
	business, err := s.catalogRepo.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			s.logger.Warn("checkBusinessAccess: business id=%d not found", businessID)
			return ErrBusinessNotFound
		}
		s.logger.Error("checkBusinessAccess: failed to get business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: checkBusinessAccess - failed to get business: %v", ErrInternal, err)
	}

	if business.OwnerID == userID {
		return nil
	}

	isStaff, err := s.catalogRepo.IsStaffUser(ctx, businessID, userID)
	if err != nil {
		s.logger.Error("checkBusinessAccess: failed to check staff user=%d: %v", userID, err)
		return fmt.Errorf("%w: checkBusinessAccess - failed to check staff: %v", ErrInternal, err)
	}
	if isStaff {
		return nil
	}

	s.logger.Warn("checkBusinessAccess: user=%d is not a member of business=%d", userID, businessID)
	return ErrAccessDenied
}
