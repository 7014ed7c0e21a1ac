package submit_proof

import (
	"errors"
	"mime"
	"net/http"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/payments"
	"github.com/m04kA/GlampingBackoffice/internal/service/payments/models"
)

// fileField имя поля multipart формы с файлом
const fileField = "file"

const (
	msgInvalidLinkID      = "некорректный ID ссылки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgFileRequired       = "файл подтверждения обязателен"
	msgNotFound           = "платежная ссылка не найдена"
	msgLinkExpired        = "срок действия ссылки истек"
	msgAlreadyVerified    = "оплата уже подтверждена"
)

type Handler struct {
	service       PaymentService
	maxUploadSize int64
	logger        Logger
}

func NewHandler(service PaymentService, maxUploadSize int64, logger Logger) *Handler {
	return &Handler{
		service:       service,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Handle POST /api/v1/payment-links/{linkId}/proof
// multipart/form-data с полем file, либо JSON {"artifactUrl": "..."}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	linkID, err := handlers.PathID(r, "linkId")
	if err != nil {
		h.logger.Warn("POST /payment-links/{id}/proof - Invalid link ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLinkID)
		return
	}

	var link *models.PaymentLinkResponse
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		// Небольшой запас на заголовки формы
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
		file, header, err := r.FormFile(fileField)
		if err != nil {
			h.logger.Warn("POST /payment-links/{id}/proof - Missing file: link_id=%d, error=%v", linkID, err)
			handlers.RespondBadRequest(w, msgFileRequired)
			return
		}
		defer file.Close()

		link, err = h.service.UploadProof(r.Context(), linkID, header.Filename, file)
		if err != nil {
			h.respondError(w, linkID, err)
			return
		}
	} else {
		var req models.SubmitProofRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /payment-links/{id}/proof - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}

		link, err = h.service.SubmitProof(r.Context(), linkID, &req)
		if err != nil {
			h.respondError(w, linkID, err)
			return
		}
	}

	h.logger.Info("POST /payment-links/{id}/proof - Proof submitted: link_id=%d", linkID)
	handlers.RespondJSON(w, http.StatusOK, link)
}

func (h *Handler) respondError(w http.ResponseWriter, linkID int64, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("POST /payment-links/{id}/proof - Validation failed: link_id=%d, error=%v", linkID, err)
		handlers.RespondValidationError(w, err)

	case errors.Is(err, payments.ErrLinkNotFound):
		h.logger.Warn("POST /payment-links/{id}/proof - Link not found: link_id=%d", linkID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, payments.ErrLinkExpired):
		h.logger.Warn("POST /payment-links/{id}/proof - Link expired: link_id=%d", linkID)
		handlers.RespondConflict(w, msgLinkExpired)

	case errors.Is(err, payments.ErrAlreadyVerified):
		h.logger.Warn("POST /payment-links/{id}/proof - Already verified: link_id=%d", linkID)
		handlers.RespondConflict(w, msgAlreadyVerified)

	default:
		h.logger.Error("POST /payment-links/{id}/proof - Failed to submit proof: link_id=%d, error=%v", linkID, err)
		handlers.RespondInternalError(w)
	}
}
