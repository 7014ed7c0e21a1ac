package block_session

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/sessions"
	"github.com/m04kA/GlampingBackoffice/internal/service/sessions/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "сессия не найдена"
)

type Handler struct {
	service SessionService
	logger  Logger
}

func NewHandler(service SessionService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/sessions/{phone}/block
// Body: {"until": "2025-06-01T10:00:00Z"} (опционально, без until бессрочно)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]

	var req models.BlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /sessions/{phone}/block - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	session, err := h.service.Block(r.Context(), phone, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /sessions/{phone}/block - Validation failed: phone=%s, error=%v", phone, err)
			handlers.RespondValidationError(w, err)

		case errors.Is(err, sessions.ErrSessionNotFound):
			h.logger.Warn("POST /sessions/{phone}/block - Session not found: phone=%s", phone)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("POST /sessions/{phone}/block - Failed to block: phone=%s, error=%v", phone, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /sessions/{phone}/block - Auto replies suspended: id=%d", session.ID)
	handlers.RespondJSON(w, http.StatusOK, session)
}
