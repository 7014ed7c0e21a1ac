package transport

import (
	"context"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// Driver открывает подключения к мессенджеру
type Driver interface {
	// Open готовит подключение для хэндла, события подключения приходят в onEvent.
	// onEvent нельзя вызывать синхронно из Open: менеджер держит блокировку.
	Open(ctx context.Context, handle domain.TransportHandle, onEvent func(Event)) (Conn, error)
}

// Conn одно живое подключение
type Conn interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, to, text string) error
	Close()
}

// HandleRepository интерфейс репозитория хэндлов
type HandleRepository interface {
	Create(ctx context.Context, name string) (*domain.TransportHandle, error)
	GetByID(ctx context.Context, id int64) (*domain.TransportHandle, error)
	List(ctx context.Context, statuses ...domain.TransportStatus) ([]*domain.TransportHandle, error)
	SaveState(ctx context.Context, h *domain.TransportHandle) error
	TouchActivity(ctx context.Context, id int64, at time.Time) error
}

// Publisher публикация событий в шину
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
