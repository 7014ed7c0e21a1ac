package get_payment_link

import (
	"errors"
	"net/http"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/service/payments"
)

const (
	msgInvalidLinkID = "некорректный ID ссылки"
	msgNotFound      = "платежная ссылка не найдена"
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

// Handle GET /api/v1/payment-links/{linkId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	linkID, err := handlers.PathID(r, "linkId")
	if err != nil {
		h.logger.Warn("GET /payment-links/{id} - Invalid link ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLinkID)
		return
	}

	link, err := h.service.Get(r.Context(), linkID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrLinkNotFound):
			h.logger.Warn("GET /payment-links/{id} - Link not found: link_id=%d", linkID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /payment-links/{id} - Failed to get link: link_id=%d, error=%v", linkID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, link)
}
