package get_transcript

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	uc "github.com/m04kA/GlampingBackoffice/internal/usecase/get_transcript"
)

const msgInvalidParams = "некорректные параметры запроса"

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

// Handle GET /api/v1/sessions/{phone}/transcript
// Query params: limit, offset (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]

	limit, offset, err := handlers.Pagination(r)
	if err != nil {
		h.logger.Warn("GET /sessions/{phone}/transcript - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &uc.Request{Phone: phone, Limit: limit, Offset: offset})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondValidationError(w, err)

		default:
			h.logger.Error("GET /sessions/{phone}/transcript - Failed to get transcript: phone=%s, error=%v", phone, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
