package cancel_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/bookings"
	"github.com/m04kA/GlampingBackoffice/internal/service/bookings/models"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
)

type fakeService struct {
	gotID  int64
	gotReq *models.CancelBookingRequest
	err    error
}

func (f *fakeService) Cancel(_ context.Context, id int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	f.gotID, f.gotReq = id, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: id, Status: string(domain.StatusCancelled)}, nil
}

func serve(svc BookingService, path, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPatch)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body)))
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, "/bookings/42/cancel", `{"cancellationReason":"изменились планы"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), svc.gotID)
	assert.Equal(t, "изменились планы", svc.gotReq.CancellationReason)

	var resp models.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Status)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		err    error
		status int
	}{
		{name: "bad id", path: "/bookings/abc/cancel", body: `{}`, status: http.StatusBadRequest},
		{name: "bad body", path: "/bookings/1/cancel", body: `{"unknown":1}`, status: http.StatusBadRequest},
		{
			name:   "validation",
			path:   "/bookings/1/cancel",
			body:   `{}`,
			err:    domain.NewValidationError("reason is required", "cancellationReason"),
			status: http.StatusBadRequest,
		},
		{name: "not found", path: "/bookings/1/cancel", body: `{}`, err: bookings.ErrBookingNotFound, status: http.StatusNotFound},
		{name: "already cancelled", path: "/bookings/1/cancel", body: `{}`, err: bookings.ErrCannotCancel, status: http.StatusConflict},
		{name: "internal", path: "/bookings/1/cancel", body: `{}`, err: bookings.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var resp handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Code)
		})
	}
}

func TestHandle_ValidationFields(t *testing.T) {
	svc := &fakeService{err: domain.NewValidationError("reason is required", "cancellationReason")}
	rec := serve(svc, "/bookings/1/cancel", `{}`)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"cancellationReason"}, resp.Fields)
}
