package payments

import (
	"context"
	"io"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// PaymentLinkRepository интерфейс репозитория платёжных ссылок
type PaymentLinkRepository interface {
	Create(ctx context.Context, link *domain.PaymentLink) (*domain.PaymentLink, error)
	GetByID(ctx context.Context, id int64) (*domain.PaymentLink, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]*domain.PaymentLink, error)
	Update(ctx context.Context, link *domain.PaymentLink) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// SessionRepository интерфейс репозитория сессий
type SessionRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	SetStageByID(ctx context.Context, id int64, stage domain.Stage) error
}

// ProofStorage хранилище файлов подтверждения оплаты
type ProofStorage interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
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
