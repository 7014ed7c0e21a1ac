package upsert_session

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/sessions/models"
)

const msgInvalidRequestBody = "некорректное тело запроса"

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

// Handle PUT /api/v1/sessions/{phone}
// Создает сессию или дописывает непустые поля в существующую
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]

	var req models.UpsertSessionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /sessions/{phone} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	session, err := h.service.Upsert(r.Context(), phone, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("PUT /sessions/{phone} - Validation failed: phone=%s, error=%v", phone, err)
			handlers.RespondValidationError(w, err)

		default:
			h.logger.Error("PUT /sessions/{phone} - Failed to upsert session: phone=%s, error=%v", phone, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /sessions/{phone} - Session saved: id=%d, phone=%s", session.ID, session.PhoneNumber)
	handlers.RespondJSON(w, http.StatusOK, session)
}
