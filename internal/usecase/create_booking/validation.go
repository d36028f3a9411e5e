package create_booking

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/pkg/types"
)

// validateRequest валидирует запрос до любых обращений к хранилищам
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	if len(req.ServiceIDs) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}

	if len(req.ServiceIDs) > domain.MaxServicesPerBooking {
		return fmt.Errorf("%w: at most %d services per booking", ErrInvalidInput, domain.MaxServicesPerBooking)
	}

	seen := make(map[int64]struct{}, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		if id <= 0 {
			return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: service %d requested twice", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет дату относительно сегодня в часовом поясе компании
func validateDate(date, now time.Time, advanceBookingDays int) error {
	if isDateInPast(date, now) {
		return ErrInvalidDate
	}

	if advanceBookingDays == 0 {
		return nil
	}

	maxDate := dateOnly(now).AddDate(0, 0, advanceBookingDays)
	if dateOnly(date).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validateStartTime на сегодня время начала должно быть строго в будущем
func validateStartTime(date time.Time, start types.TimeString, now time.Time) error {
	if !isSameDay(date, now) {
		return nil
	}

	if start.Minutes() <= now.Hour()*60+now.Minute() {
		return fmt.Errorf("%w: %s has already started", ErrTooLateToBook, start)
	}

	return nil
}

// orderServices услуги в порядке запроса, ошибка если какого-то id нет
func orderServices(ids []int64, found []*domain.Service) ([]*domain.Service, error) {
	byID := make(map[int64]*domain.Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	ordered := make([]*domain.Service, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id=%d", ErrServiceNotFound, id)
		}
		ordered = append(ordered, s)
	}

	return ordered, nil
}

func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// dateOnly отбрасывает время и зону, оставляя календарную дату
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isDateInPast(date, now time.Time) bool {
	return dateOnly(date).Before(dateOnly(now))
}
