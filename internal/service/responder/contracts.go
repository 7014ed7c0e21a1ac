package responder

import (
	"context"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// TextGenerator генерация ответа по одному сообщению пользователя
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userText string, maxTokens int) (string, error)
}

// Sender отправка сообщения через хэндл транспорта
type Sender interface {
	Send(ctx context.Context, handleID int64, to, text string) error
}

// TranscriptRepository интерфейс журнала переписки
type TranscriptRepository interface {
	Append(ctx context.Context, entry *domain.TranscriptEntry) (*domain.TranscriptEntry, error)
}

// SessionReader чтение сессии для проверки блокировки
type SessionReader interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Session, error)
}

// MetricsRecorder счётчик исходов автоответов
type MetricsRecorder interface {
	ObserveResponder(outcome string)
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
