package get_staff_schedule

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randevux/booking-service/internal/service/schedule"
	"github.com/randevux/booking-service/internal/service/schedule/models"
	"github.com/randevux/booking-service/pkg/logger"
)

type fakeService struct {
	err error
}

func (f *fakeService) GetStaffSchedule(_ context.Context, businessID, staffID int64) (*models.ScheduleResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ScheduleResponse{BusinessID: businessID, StaffID: staffID, Days: []models.DaySchedule{}}, nil
}

func serve(svc *fakeService, businessID, staffID string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/businesses/{businessId}/staff/{staffId}/schedule", NewHandler(svc, logger.Nop()).Handle)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/businesses/"+businessID+"/staff/"+staffID+"/schedule", nil))
	return rec
}

func TestHandle_OK(t *testing.T) {
	rec := serve(&fakeService{}, "1", "2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"businessId":1,"staffId":2,"days":[]}`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		business string
		staff    string
		err      error
		wantCode int
	}{
		{name: "bad business", business: "x", staff: "2", wantCode: http.StatusBadRequest},
		{name: "bad staff", business: "1", staff: "y", wantCode: http.StatusBadRequest},
		{name: "no business", business: "1", staff: "2", err: schedule.ErrBusinessNotFound, wantCode: http.StatusNotFound},
		{name: "no staff", business: "1", staff: "2", err: schedule.ErrStaffNotFound, wantCode: http.StatusNotFound},
		{name: "internal", business: "1", staff: "2", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, tt.business, tt.staff)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
