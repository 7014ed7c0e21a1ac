package transition_stage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/sessions"
	"github.com/m04kA/GlampingBackoffice/internal/service/sessions/models"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
)

type fakeService struct {
	gotPhone string
	gotReq   *models.TransitionStageRequest
	err      error
}

func (f *fakeService) TransitionStage(_ context.Context, phone string, req *models.TransitionStageRequest) (*models.SessionResponse, error) {
	f.gotPhone, f.gotReq = phone, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.SessionResponse{ID: 1, PhoneNumber: phone, Stage: req.Stage}, nil
}

func serve(svc SessionService, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/sessions/{phone}/stage", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/+77011234567/stage", strings.NewReader(body)))
	return rec
}

func TestHandle_PassesFields(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, `{"stage":"booking_details_collected","fields":{"guestCount":2}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "+77011234567", svc.gotPhone)
	assert.Equal(t, "booking_details_collected", svc.gotReq.Stage)
	require.NotNil(t, svc.gotReq.Fields)
	assert.Equal(t, 2, *svc.gotReq.Fields.GuestCount)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown stage", domain.NewValidationError("unknown stage", "stage"), http.StatusBadRequest},
		{"not found", sessions.ErrSessionNotFound, http.StatusNotFound},
		{"backwards", domain.ErrInvalidTransition, http.StatusConflict},
		{"internal", sessions.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(&fakeService{err: tt.err}, `{"stage":"initial_contact"}`).Code)
		})
	}
}
