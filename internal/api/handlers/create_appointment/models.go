package create_appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/internal/service/appointments/models"
	createBooking "github.com/randevux/booking-service/internal/usecase/create_booking"
	"github.com/randevux/booking-service/pkg/types"
)

// CreateAppointmentRequest HTTP request model, клиент берется из заголовка X-User-ID
type CreateAppointmentRequest struct {
	BusinessID int64   `json:"businessId"`
	StaffID    *int64  `json:"staffId,omitempty"` // не указан - любой мастер
	ServiceIDs []int64 `json:"serviceIds"`
	Date       string  `json:"date"`      // "2026-03-10"
	StartTime  string  `json:"startTime"` // "10:00"
	Notes      *string `json:"notes,omitempty"`
}

// errInvalidDate и errInvalidTime подсказывают хендлеру, какое поле не распарсилось
var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid start time")
)

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(customerID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	startTime := types.TimeString(r.StartTime)
	if err := startTime.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidTime, err)
	}

	return &createBooking.Request{
		BusinessID: r.BusinessID,
		CustomerID: customerID,
		StaffID:    r.StaffID,
		ServiceIDs: r.ServiceIDs,
		Date:       date,
		StartTime:  startTime,
		Notes:      r.Notes,
	}, nil
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64                            `json:"id"`
	BusinessID      int64                            `json:"businessId"`
	StaffID         int64                            `json:"staffId"`
	CustomerID      int64                            `json:"customerId"`
	Date            string                           `json:"date"`
	StartTime       string                           `json:"startTime"`
	EndTime         string                           `json:"endTime"`
	DurationMinutes int                              `json:"durationMinutes"`
	TotalPrice      float64                          `json:"totalPrice"`
	Status          string                           `json:"status"`
	Notes           *string                          `json:"notes,omitempty"`
	Items           []models.AppointmentItemResponse `json:"items"`
	CreatedAt       string                           `json:"createdAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		BusinessID:      resp.BusinessID,
		StaffID:         resp.StaffID,
		CustomerID:      resp.CustomerID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		DurationMinutes: resp.DurationMinutes,
		TotalPrice:      resp.TotalPrice,
		Status:          string(resp.Status),
		Notes:           resp.Notes,
		Items:           models.FromDomainItems(resp.Items),
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
