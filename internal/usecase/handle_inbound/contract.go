package handle_inbound

import (
	"context"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/responder"
)

// ClientService поиск или создание клиента по телефону
type ClientService interface {
	FindOrCreate(ctx context.Context, seed domain.Client) (*domain.Client, error)
}

// TranscriptRepository интерфейс репозитория переписки
type TranscriptRepository interface {
	Append(ctx context.Context, entry *domain.TranscriptEntry) (*domain.TranscriptEntry, error)
}

// Responder постановка автоответа в очередь
type Responder interface {
	Enqueue(task responder.Task) error
}

// SessionToucher фиксация последнего взаимодействия с сессией
type SessionToucher interface {
	Touch(ctx context.Context, phone string, clientID int64, at time.Time) error
}

// MetricsRecorder учет входящих сообщений по результату
type MetricsRecorder interface {
	ObserveInbound(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
