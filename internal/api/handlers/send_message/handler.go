package send_message

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/api/middleware"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	uc "github.com/m04kA/GlampingBackoffice/internal/usecase/send_manual_message"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNoTransport        = "нет подключенного мессенджера"
	msgSendFailed         = "сообщение не доставлено, попробуйте позже"
)

type Handler struct {
	useCase UseCase
	logger  Logger
}

func NewHandler(useCase UseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/sessions/{phone}/messages
// Body: {"text": "...", "handleId": 1}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]
	adminID, _ := middleware.GetAdminID(r.Context())

	var req uc.Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /sessions/{phone}/messages - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.Phone = phone

	result, err := h.useCase.Execute(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /sessions/{phone}/messages - Validation failed: %v", err)
			handlers.RespondValidationError(w, err)

		case errors.Is(err, uc.ErrNoConnectedTransport):
			h.logger.Warn("POST /sessions/{phone}/messages - No connected transport: admin=%s", adminID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgNoTransport)

		case errors.Is(err, domain.ErrTransientTransport):
			h.logger.Warn("POST /sessions/{phone}/messages - Send failed: phone=%s, error=%v", phone, err)
			handlers.RespondError(w, http.StatusBadGateway, msgSendFailed)

		default:
			h.logger.Error("POST /sessions/{phone}/messages - Failed to send: phone=%s, error=%v", phone, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /sessions/{phone}/messages - Message sent: entry_id=%d, admin=%s", result.EntryID, adminID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
