package sessions

import (
	"context"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// SessionRepository интерфейс репозитория сессий
type SessionRepository interface {
	Upsert(ctx context.Context, phone string, patch domain.SessionPatch) (*domain.Session, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Session, error)
	UpdateStage(ctx context.Context, phone string, stage domain.Stage, patch domain.SessionPatch, at time.Time) (*domain.Session, error)
	SetBlocked(ctx context.Context, phone string, blocked bool, until *time.Time) (*domain.Session, error)
	List(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error)
	ReleaseExpiredBlocks(ctx context.Context, now time.Time) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
