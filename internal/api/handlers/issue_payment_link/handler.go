package issue_payment_link

import (
	"errors"
	"net/http"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/payments"
	"github.com/m04kA/GlampingBackoffice/internal/service/payments/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование или сессия не найдены"
	msgBookingCancelled   = "бронирование отменено"
	msgPaymentsDisabled   = "оплата по ссылке не настроена"
)

type Handler struct {
	service PaymentService
	logger  Logger
}

func NewHandler(service PaymentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/payment-links
// Body: {"amount": 45000, "currency": "KZT", "sessionId": 1}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/payment-links - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req models.IssueRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/payment-links - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	link, err := h.service.Issue(r.Context(), bookingID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /bookings/{id}/payment-links - Validation failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondValidationError(w, err)

		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("POST /bookings/{id}/payment-links - Not found: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, payments.ErrBookingCancelled):
			h.logger.Warn("POST /bookings/{id}/payment-links - Booking cancelled: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgBookingCancelled)

		case errors.Is(err, payments.ErrPaymentsUnavailable):
			h.logger.Error("POST /bookings/{id}/payment-links - Payments unavailable: %v", err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgPaymentsDisabled)

		default:
			h.logger.Error("POST /bookings/{id}/payment-links - Failed to issue link: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/payment-links - Payment link issued: booking_id=%d, link_id=%d", bookingID, link.ID)
	handlers.RespondJSON(w, http.StatusCreated, link)
}
