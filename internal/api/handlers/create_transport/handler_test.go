package create_transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
)

type fakeManager struct {
	err error
}

func (f *fakeManager) Create(_ context.Context, name string) (*domain.TransportHandle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.TransportHandle{ID: 1, Name: name, Status: domain.TransportDisconnected}, nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"created", `{"name":"reception"}`, nil, http.StatusCreated},
		{"bad body", `[]`, nil, http.StatusBadRequest},
		{"validation", `{"name":" "}`, domain.NewValidationError("handle name is required", "name"), http.StatusBadRequest},
		{"duplicate", `{"name":"reception"}`, transport.ErrHandleExists, http.StatusConflict},
		{"internal", `{"name":"reception"}`, transport.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeManager{err: tt.err}, logger.NewNop())
			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodPost, "/transports", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
