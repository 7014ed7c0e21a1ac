package list_transports

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

type TransportManager interface {
	List(ctx context.Context) ([]*domain.TransportHandle, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
