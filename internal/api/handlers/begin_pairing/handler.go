package begin_pairing

import (
	"errors"
	"net/http"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport/models"
)

const (
	msgInvalidTransportID = "некорректный ID подключения"
	msgNotFound           = "подключение не найдено"
	msgUnavailable        = "мессенджер временно недоступен"
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

// Handle POST /api/v1/transports/{handleId}/pairing
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "handleId")
	if err != nil {
		h.logger.Warn("POST /transports/{id}/pairing - Invalid transport ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTransportID)
		return
	}

	handle, err := h.manager.BeginPairing(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, transport.ErrHandleNotFound):
			h.logger.Warn("POST /transports/{id}/pairing - Handle not found: id=%d", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, transport.ErrManagerClosed), errors.Is(err, domain.ErrTransientTransport):
			h.logger.Warn("POST /transports/{id}/pairing - Pairing unavailable: id=%d, error=%v", id, err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgUnavailable)

		default:
			h.logger.Error("POST /transports/{id}/pairing - Failed: id=%d, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /transports/{id}/pairing - OK: id=%d, status=%s", id, handle.Status)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainHandle(handle))
}
