package begin_pairing

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

type TransportManager interface {
	BeginPairing(ctx context.Context, id int64) (*domain.TransportHandle, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
