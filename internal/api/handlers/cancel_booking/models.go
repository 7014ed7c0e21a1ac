package cancel_booking

import (
	"github.com/m04kA/GlampingBackoffice/internal/service/bookings/models"
	"github.com/m04kA/GlampingBackoffice/pkg/ptr"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest() *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		CancellationReason: ptr.Value(r.CancellationReason),
	}
}
