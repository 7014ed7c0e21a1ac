package clients

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// ClientRepository интерфейс репозитория клиентов
type ClientRepository interface {
	FindOrCreate(ctx context.Context, c *domain.Client) (*domain.Client, bool, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Client, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
