package verify_payment

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/service/payments/models"
)

type PaymentService interface {
	Verify(ctx context.Context, linkID int64, verifiedBy string) (*models.PaymentLinkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
