package transition_stage

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
	msgInvalidTransition  = "сессию нельзя вернуть на предыдущую стадию"
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

// Handle POST /api/v1/sessions/{phone}/stage
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]

	var req models.TransitionStageRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /sessions/{phone}/stage - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	session, err := h.service.TransitionStage(r.Context(), phone, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /sessions/{phone}/stage - Validation failed: phone=%s, error=%v", phone, err)
			handlers.RespondValidationError(w, err)

		case errors.Is(err, sessions.ErrSessionNotFound):
			h.logger.Warn("POST /sessions/{phone}/stage - Session not found: phone=%s", phone)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("POST /sessions/{phone}/stage - Invalid transition: phone=%s, stage=%s", phone, req.Stage)
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("POST /sessions/{phone}/stage - Failed to transition: phone=%s, error=%v", phone, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /sessions/{phone}/stage - Stage changed: id=%d, stage=%s", session.ID, session.Stage)
	handlers.RespondJSON(w, http.StatusOK, session)
}
