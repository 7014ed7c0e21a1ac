package create_transport

import (
	"errors"
	"net/http"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgHandleExists       = "подключение с таким именем уже существует"
)

type Handler struct {
	manager TransportManager
	logger  Logger
}

func NewHandler(manager TransportManager, logger Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// Handle POST /api/v1/transports
// Body: {"name": "reception"}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateHandleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /transports - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	handle, err := h.manager.Create(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /transports - Validation failed: %v", err)
			handlers.RespondValidationError(w, err)

		case errors.Is(err, transport.ErrHandleExists):
			h.logger.Warn("POST /transports - Handle already exists: name=%s", req.Name)
			handlers.RespondConflict(w, msgHandleExists)

		default:
			h.logger.Error("POST /transports - Failed to create handle: name=%s, error=%v", req.Name, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /transports - Handle created: id=%d, name=%s", handle.ID, handle.Name)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainHandle(handle))
}
