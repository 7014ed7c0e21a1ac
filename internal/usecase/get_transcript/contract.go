package get_transcript

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// ClientRepository интерфейс репозитория клиентов
type ClientRepository interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Client, error)
}

// TranscriptRepository интерфейс репозитория переписки
type TranscriptRepository interface {
	ListByClient(ctx context.Context, clientID int64, limit, offset uint64) ([]*domain.TranscriptEntry, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
