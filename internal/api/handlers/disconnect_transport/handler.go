package disconnect_transport

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

// Handle POST /api/v1/transports/{handleId}/disconnect
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "handleId")
	if err != nil {
		h.logger.Warn("POST /transports/{id}/disconnect - Invalid transport ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTransportID)
		return
	}

	handle, err := h.manager.Disconnect(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, transport.ErrHandleNotFound):
			h.logger.Warn("POST /transports/{id}/disconnect - Handle not found: id=%d", id)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("POST /transports/{id}/disconnect - Failed: id=%d, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /transports/{id}/disconnect - OK: id=%d, status=%s", id, handle.Status)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainHandle(handle))
}
