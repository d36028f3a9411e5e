package models

import (
	"errors"
	"time"

	"github.com/randevux/booking-service/internal/domain"
)

var (
	// ErrInvalidStatus неизвестный статус записи
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request models

// CancelAppointmentRequest отмена клиентом или компанией
type CancelAppointmentRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// UpdateStatusRequest смена статуса компанией
type UpdateStatusRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// GetCustomerAppointmentsRequest история клиента
type GetCustomerAppointmentsRequest struct {
	UserID     int64   `json:"userId"`
	CustomerID int64   `json:"customerId"`
	Status     *string `json:"status,omitempty"`
}

// GetBusinessAppointmentsRequest список записей компании
type GetBusinessAppointmentsRequest struct {
	UserID          int64      `json:"userId"`
	BusinessID      int64      `json:"businessId"`
	StaffID         *int64     `json:"staffId,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Status          *string    `json:"status,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует запрос в фильтр репозитория
func (r *GetBusinessAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		BusinessID:      r.BusinessID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.StaffID != nil {
		filter.StaffIDs = []int64{*r.StaffID}
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response models

// AppointmentItemResponse строка услуги
type AppointmentItemResponse struct {
	ServiceID       int64   `json:"serviceId"`
	ServiceName     string  `json:"serviceName"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

// AppointmentResponse DTO записи
type AppointmentResponse struct {
	ID              int64                     `json:"id"`
	BusinessID      int64                     `json:"businessId"`
	StaffID         int64                     `json:"staffId"`
	CustomerID      int64                     `json:"customerId"`
	Date            string                    `json:"date"`      // "2026-03-10"
	StartTime       string                    `json:"startTime"` // "10:00"
	EndTime         string                    `json:"endTime"`
	DurationMinutes int                       `json:"durationMinutes"`
	TotalPrice      float64                   `json:"totalPrice"`
	Status          string                    `json:"status"`
	Notes           *string                   `json:"notes,omitempty"`
	Items           []AppointmentItemResponse `json:"items"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // RFC 3339

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse список записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// FromDomainAppointment конвертирует доменную модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		BusinessID:         a.BusinessID,
		StaffID:            a.StaffID,
		CustomerID:         a.CustomerID,
		Date:               a.Date.Format(domain.DateFormat),
		StartTime:          a.StartTime.String(),
		EndTime:            a.EndTime.String(),
		DurationMinutes:    a.DurationMinutes,
		TotalPrice:         a.TotalPrice,
		Status:             string(a.Status),
		Notes:              a.Notes,
		Items:              FromDomainItems(a.Items),
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.CancelledAt != nil {
		cancelled := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelled
	}

	return resp
}

// FromDomainItems конвертирует строки услуг с сохранением порядка
func FromDomainItems(items []domain.AppointmentItem) []AppointmentItemResponse {
	out := make([]AppointmentItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, AppointmentItemResponse{
			ServiceID:       it.ServiceID,
			ServiceName:     it.ServiceName,
			DurationMinutes: it.DurationMinutes,
			Price:           it.Price,
		})
	}
	return out
}

// FromDomainAppointmentList конвертирует список записей
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if dto := FromDomainAppointment(a); dto != nil {
			resp.Appointments = append(resp.Appointments, *dto)
		}
	}

	return resp
}

// ToDomainStatus парсит и валидирует статус
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
