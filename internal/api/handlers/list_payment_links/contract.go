package list_payment_links

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/service/payments/models"
)

type PaymentService interface {
	ListByBooking(ctx context.Context, bookingID int64) (*models.PaymentLinkListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
