package begin_pairing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport/models"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
)

type fakeManager struct {
	err error
}

func (f *fakeManager) BeginPairing(_ context.Context, id int64) (*domain.TransportHandle, error) {
	if f.err != nil {
		return nil, f.err
	}
	artifact := "2@qr-payload"
	jid := "77011234567:3@s.whatsapp.net"
	return &domain.TransportHandle{
		ID:              id,
		Name:            "reception",
		Status:          domain.TransportWaitingForPairing,
		PairingArtifact: &artifact,
		DeviceJID:       &jid,
	}, nil
}

func serve(m TransportManager, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/transports/{handleId}/pairing", NewHandler(m, logger.NewNop()).Handle).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func TestHandle_ReturnsPairingArtifact(t *testing.T) {
	rec := serve(&fakeManager{}, "/transports/2/pairing")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HandleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.ID)
	assert.Equal(t, "waiting_for_pairing", resp.Status)
	require.NotNil(t, resp.PairingArtifact)
	assert.Equal(t, "2@qr-payload", *resp.PairingArtifact)
	assert.NotContains(t, rec.Body.String(), "s.whatsapp.net")
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"bad id", "/transports/abc/pairing", nil, http.StatusBadRequest},
		{"not found", "/transports/2/pairing", transport.ErrHandleNotFound, http.StatusNotFound},
		{"closed", "/transports/2/pairing", transport.ErrManagerClosed, http.StatusServiceUnavailable},
		{"driver down", "/transports/2/pairing", fmt.Errorf("open: %w", domain.ErrTransientTransport), http.StatusServiceUnavailable},
		{"internal", "/transports/2/pairing", transport.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(&fakeManager{err: tt.err}, tt.path).Code)
		})
	}
}
