package issue_payment_link

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/service/payments/models"
)

type PaymentService interface {
	Issue(ctx context.Context, bookingID int64, req *models.IssueRequest) (*models.PaymentLinkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
