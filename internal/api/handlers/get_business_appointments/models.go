package get_business_appointments

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/randevux/booking-service/internal/domain"
	"github.com/randevux/booking-service/internal/service/appointments/models"
)

// ToServiceRequest создает запрос сервиса из query параметров
func ToServiceRequest(businessID, userID int64, query url.Values) (*models.GetBusinessAppointmentsRequest, error) {
	req := &models.GetBusinessAppointmentsRequest{
		UserID:     userID,
		BusinessID: businessID,
	}

	if v := query.Get("staffId"); v != "" {
		staffID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid staffId: %w", err)
		}
		req.StaffID = &staffID
	}

	// date - сокращение для startDate = endDate
	if v := query.Get("date"); v != "" {
		date, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		req.StartDate = &date
		req.EndDate = &date
	}

	if v := query.Get("startDate"); v != "" {
		date, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, fmt.Errorf("invalid startDate: %w", err)
		}
		req.StartDate = &date
	}

	if v := query.Get("endDate"); v != "" {
		date, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate: %w", err)
		}
		req.EndDate = &date
	}

	if v := query.Get("status"); v != "" {
		req.Status = &v
	}

	if v := query.Get("includeInactive"); v != "" {
		includeInactive, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
