package create_transport

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

type TransportManager interface {
	Create(ctx context.Context, name string) (*domain.TransportHandle, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
