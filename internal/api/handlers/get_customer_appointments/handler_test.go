package get_customer_appointments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randevux/booking-service/internal/api/middleware"
	"github.com/randevux/booking-service/internal/service/appointments"
	"github.com/randevux/booking-service/internal/service/appointments/models"
	"github.com/randevux/booking-service/pkg/logger"
)

type fakeService struct {
	got *models.GetCustomerAppointmentsRequest
	err error
}

func (f *fakeService) GetCustomerAppointments(_ context.Context, req *models.GetCustomerAppointmentsRequest) (*models.AppointmentListResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentListResponse{Appointments: []models.AppointmentResponse{}}, nil
}

func serve(svc *fakeService, customerID, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+customerID+"/appointments"+query, nil)
	req = mux.SetURLVars(req, map[string]string{"customerId": customerID})
	req.Header.Set(middleware.UserIDHeader, "100")

	rec := httptest.NewRecorder()
	middleware.Auth(http.HandlerFunc(NewHandler(svc, logger.Nop()).Handle)).ServeHTTP(rec, req)
	return rec
}

func TestHandle_OK(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "100", "?status=pending")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"appointments":[]}`, rec.Body.String())
	require.NotNil(t, svc.got.Status)
	assert.Equal(t, "pending", *svc.got.Status)
	assert.Equal(t, int64(100), svc.got.CustomerID)
	assert.Equal(t, int64(100), svc.got.UserID)
}

func TestHandle_NoStatusFilter(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "100", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.got.Status)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		customerID string
		err        error
		wantCode   int
	}{
		{name: "bad id", customerID: "me", wantCode: http.StatusBadRequest},
		{name: "invalid status", customerID: "100", err: appointments.ErrInvalidInput, wantCode: http.StatusBadRequest},
		{name: "other customer", customerID: "200", err: appointments.ErrAccessDenied, wantCode: http.StatusForbidden},
		{name: "internal", customerID: "100", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, tt.customerID, "")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
