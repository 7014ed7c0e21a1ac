package submit_proof

import (
	"context"
	"io"

	"github.com/m04kA/GlampingBackoffice/internal/service/payments/models"
)

type PaymentService interface {
	UploadProof(ctx context.Context, linkID int64, filename string, r io.Reader) (*models.PaymentLinkResponse, error)
	SubmitProof(ctx context.Context, linkID int64, req *models.SubmitProofRequest) (*models.PaymentLinkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
