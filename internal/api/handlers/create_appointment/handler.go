package create_appointment

import (
	"errors"
	"net/http"

	"github.com/randevux/booking-service/internal/api/handlers"
	"github.com/randevux/booking-service/internal/api/middleware"
	createBooking "github.com/randevux/booking-service/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDate        = "invalid date format, expected YYYY-MM-DD"
	msgInvalidTime        = "invalid start time format, expected HH:MM"
	msgMissingUserID      = "missing user id"
	msgInvalidInput       = "invalid booking request"
	msgSlotTaken          = "slot taken"
	msgBookingInProgress  = "another booking for this day is in progress, try again"
	msgBusinessNotFound   = "business not found"
	msgServiceNotFound    = "service not found"
	msgStaffNotCapable    = "staff member cannot perform the selected services"
	msgInvalidBookingDate = "date is in the past"
	msgDateTooFar         = "date is too far in the future"
	msgInvalidTimeSlot    = "staff member is not working at the selected time"
	msgTooLateToBook      = "selected time has already passed"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(customerID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotTaken):
			h.logger.Warn("POST /appointments - Slot taken: customer_id=%d, business_id=%d", customerID, req.BusinessID)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, createBooking.ErrBookingInProgress):
			h.logger.Warn("POST /appointments - Booking in progress: customer_id=%d, business_id=%d", customerID, req.BusinessID)
			handlers.RespondConflict(w, msgBookingInProgress)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrBusinessNotFound):
			h.logger.Warn("POST /appointments - Business not found: business_id=%d", req.BusinessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: business_id=%d, services=%v", req.BusinessID, req.ServiceIDs)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrStaffNotCapable):
			h.logger.Warn("POST /appointments - Staff not capable: business_id=%d", req.BusinessID)
			handlers.RespondBadRequest(w, msgStaffNotCapable)

		case errors.Is(err, createBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: customer_id=%d, business_id=%d, error=%v",
				customerID, req.BusinessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, customer_id=%d, staff_id=%d",
		result.ID, customerID, result.StaffID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
