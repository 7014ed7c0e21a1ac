package list_transports

import (
	"net/http"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport/models"
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

// Handle GET /api/v1/transports
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	handles, err := h.manager.List(r.Context())
	if err != nil {
		h.logger.Error("GET /transports - Failed to list handles: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, models.FromDomainHandleList(handles))
}
