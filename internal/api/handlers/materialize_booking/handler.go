package materialize_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/bookings/models"
	uc "github.com/m04kA/GlampingBackoffice/internal/usecase/materialize_booking"
)

const msgNotFound = "сессия не найдена"

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

// Handle POST /api/v1/sessions/{phone}/booking
// 201 для нового бронирования, 200 если сессия уже была материализована
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]

	result, err := h.useCase.Execute(r.Context(), &uc.Request{Phone: phone})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /sessions/{phone}/booking - Validation failed: phone=%s, error=%v", phone, err)
			handlers.RespondValidationError(w, err)

		case errors.Is(err, uc.ErrSessionNotFound):
			h.logger.Warn("POST /sessions/{phone}/booking - Session not found: phone=%s", phone)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("POST /sessions/{phone}/booking - Failed to materialize: phone=%s, error=%v", phone, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	h.logger.Info("POST /sessions/{phone}/booking - Booking ready: booking_id=%d, created=%t", result.Booking.ID, result.Created)
	handlers.RespondJSON(w, status, models.FromDomainBooking(result.Booking))
}
