package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/randevux/booking-service/internal/api/handlers"
	"github.com/randevux/booking-service/internal/domain"
	getAvailableSlots "github.com/randevux/booking-service/internal/usecase/get_available_slots"
)

const (
	msgInvalidBusinessID  = "invalid business id"
	msgInvalidServiceIDs  = "serviceIds must be a comma separated list of ids"
	msgInvalidStaffID     = "staffId must be an id or \"any\""
	msgMissingDate        = "date is required"
	msgInvalidDate        = "invalid date format, expected YYYY-MM-DD"
	msgInvalidInput       = "invalid availability request"
	msgBusinessNotFound   = "business not found"
	msgServiceNotFound    = "service not found"
	msgStaffNotCapable    = "staff member cannot perform the selected services"
	msgInvalidBookingDate = "date is in the past"
	msgDateTooFar         = "date is too far in the future"

	anyStaff = "any"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/available-slots
// Query params: serviceIds (required, "1,2"), staffId (optional, id или "any"), date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(mux.Vars(r)["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	query := r.URL.Query()

	serviceIDs, err := handlers.ParseIDList(query.Get("serviceIds"))
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid service IDs: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceIDs)
		return
	}

	var staffID *int64
	if raw := query.Get("staffId"); raw != "" && raw != anyStaff {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.logger.Warn("GET /businesses/{id}/available-slots - Invalid staff ID: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidStaffID)
			return
		}
		staffID = &id
	}

	dateStr := query.Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		BusinessID: businessID,
		ServiceIDs: serviceIDs,
		StaffID:    staffID,
		Date:       date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, getAvailableSlots.ErrBusinessNotFound):
			handlers.RespondNotFound(w, msgBusinessNotFound)
		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)
		case errors.Is(err, getAvailableSlots.ErrStaffNotCapable):
			handlers.RespondBadRequest(w, msgStaffNotCapable)
		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidBookingDate)
		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)
		default:
			h.logger.Error("GET /businesses/{id}/available-slots - Failed to resolve slots: business_id=%d, error=%v", businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
