package materialize_booking

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// SessionRepository интерфейс репозитория сессий
// Внутри транзакции GetByPhone блокирует строку
type SessionRepository interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Session, error)
	LinkBooking(ctx context.Context, id int64, clientID, bookingID int64, stage domain.Stage) (*domain.Session, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// ClientRepository интерфейс репозитория клиентов
type ClientRepository interface {
	FindOrCreate(ctx context.Context, client *domain.Client) (*domain.Client, bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
