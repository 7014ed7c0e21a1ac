package verify_payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/api/middleware"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/payments"
	"github.com/m04kA/GlampingBackoffice/internal/service/payments/models"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
)

type fakeService struct {
	verifiedBy string
	err        error
}

func (f *fakeService) Verify(_ context.Context, linkID int64, verifiedBy string) (*models.PaymentLinkResponse, error) {
	f.verifiedBy = verifiedBy
	if f.err != nil {
		return nil, f.err
	}
	return &models.PaymentLinkResponse{ID: linkID, Status: string(domain.PaymentVerified), VerifiedBy: &verifiedBy}, nil
}

func serve(svc PaymentService, adminID string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/payment-links/{linkId}/verify", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/payment-links/9/verify", nil)
	req.Header.Set(middleware.AdminIDHeader, adminID)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_UsesAdminID(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, "manager-1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "manager-1", svc.verifiedBy)
	assert.Contains(t, rec.Body.String(), `"verifiedBy":"manager-1"`)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"link not found", payments.ErrLinkNotFound, http.StatusNotFound},
		{"booking not found", payments.ErrBookingNotFound, http.StatusNotFound},
		{"expired", payments.ErrLinkExpired, http.StatusConflict},
		{"cancelled", payments.ErrBookingCancelled, http.StatusConflict},
		{"internal", payments.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(&fakeService{err: tt.err}, "manager-1").Code)
		})
	}
}
