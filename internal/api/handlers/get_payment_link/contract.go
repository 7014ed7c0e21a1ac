package get_payment_link

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/service/payments/models"
)

type PaymentService interface {
	Get(ctx context.Context, linkID int64) (*models.PaymentLinkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
