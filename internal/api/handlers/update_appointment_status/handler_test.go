package update_appointment_status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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
	gotReq *models.UpdateStatusRequest
	err    error
}

func (f *fakeService) UpdateStatus(_ context.Context, _ int64, req *models.UpdateStatusRequest) error {
	f.gotReq = req
	return f.err
}

func (f *fakeService) GetByID(_ context.Context, id int64, _ int64) (*models.AppointmentResponse, error) {
	return &models.AppointmentResponse{ID: id, Status: f.gotReq.Status, Items: []models.AppointmentItemResponse{}}, nil
}

func serve(svc *fakeService, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/5/status", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"appointmentId": "5"})
	req.Header.Set(middleware.UserIDHeader, "1")

	rec := httptest.NewRecorder()
	middleware.Auth(http.HandlerFunc(NewHandler(svc, logger.Nop()).Handle)).ServeHTTP(rec, req)
	return rec
}

func TestHandle_OK(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, `{"status":"confirmed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)
	assert.Equal(t, int64(1), svc.gotReq.UserID)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{name: "bad body", body: `[]`, wantCode: http.StatusBadRequest},
		{name: "invalid status", body: `{"status":"done"}`, err: fmt.Errorf("%w: invalid status", appointments.ErrInvalidInput), wantCode: http.StatusBadRequest},
		{name: "not found", body: `{"status":"confirmed"}`, err: appointments.ErrAppointmentNotFound, wantCode: http.StatusNotFound},
		{name: "forbidden", body: `{"status":"confirmed"}`, err: appointments.ErrAccessDenied, wantCode: http.StatusForbidden},
		{name: "transition", body: `{"status":"pending"}`, err: fmt.Errorf("%w: completed -> pending", appointments.ErrInvalidTransition), wantCode: http.StatusConflict},
		{name: "internal", body: `{"status":"confirmed"}`, err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
