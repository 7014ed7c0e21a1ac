package get_transport

import (
	"errors"
	"net/http"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport/models"
)

const (
	msgInvalidTransportID = "некорректный ID подключения"
	msgNotFound           = "подключение не найдено"
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

// Handle GET /api/v1/transports/{handleId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "handleId")
	if err != nil {
		h.logger.Warn("GET /transports/{id} - Invalid transport ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTransportID)
		return
	}

	handle, err := h.manager.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, transport.ErrHandleNotFound):
			h.logger.Warn("GET /transports/{id} - Handle not found: id=%d", id)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /transports/{id} - Failed: id=%d, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /transports/{id} - OK: id=%d, status=%s", id, handle.Status)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainHandle(handle))
}
