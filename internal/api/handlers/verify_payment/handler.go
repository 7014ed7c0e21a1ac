package verify_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/api/middleware"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/payments"
)

const (
	msgInvalidLinkID    = "некорректный ID ссылки"
	msgNotFound         = "платежная ссылка или бронирование не найдены"
	msgLinkExpired      = "срок действия ссылки истек"
	msgBookingCancelled = "бронирование отменено"
)

type Handler struct {
	service PaymentService
	logger  Logger
}

func NewHandler(service PaymentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/payment-links/{linkId}/verify
// Подтверждающий администратор берется из X-Admin-ID
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	linkID, err := handlers.PathID(r, "linkId")
	if err != nil {
		h.logger.Warn("POST /payment-links/{id}/verify - Invalid link ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLinkID)
		return
	}
	adminID, _ := middleware.GetAdminID(r.Context())

	link, err := h.service.Verify(r.Context(), linkID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /payment-links/{id}/verify - Validation failed: link_id=%d, error=%v", linkID, err)
			handlers.RespondValidationError(w, err)

		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("POST /payment-links/{id}/verify - Not found: link_id=%d, error=%v", linkID, err)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, payments.ErrLinkExpired):
			h.logger.Warn("POST /payment-links/{id}/verify - Link expired: link_id=%d", linkID)
			handlers.RespondConflict(w, msgLinkExpired)

		case errors.Is(err, payments.ErrBookingCancelled):
			h.logger.Warn("POST /payment-links/{id}/verify - Booking cancelled: link_id=%d", linkID)
			handlers.RespondConflict(w, msgBookingCancelled)

		default:
			h.logger.Error("POST /payment-links/{id}/verify - Failed to verify: link_id=%d, error=%v", linkID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payment-links/{id}/verify - Payment verified: link_id=%d, admin=%s", linkID, adminID)
	handlers.RespondJSON(w, http.StatusOK, link)
}
