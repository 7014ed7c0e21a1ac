package domain

import "time"

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking бронирование размещения
type Booking struct {
	ID                int64
	ClientID          int64
	SessionID         *int64
	AccommodationType string
	CheckIn           time.Time
	CheckOut          time.Time
	GuestCount        int
	ContactName       string
	ContactEmail      string
	ContactPhone      string
	TotalPrice        float64
	Status            BookingStatus

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Nights количество ночей проживания
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// CanBeCancelled отменить можно только не отменённое бронирование
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled true для отменённого бронирования
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// ParseBookingStatus валидирует статус
func ParseBookingStatus(v string) (BookingStatus, error) {
	switch s := BookingStatus(v); s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return s, nil
	default:
		return "", NewValidationError("unknown booking status "+v, "status")
	}
}

// BookingFilter фильтр списка бронирований
type BookingFilter struct {
	ClientID *int64
	Status   *BookingStatus
	From     *time.Time // заезд не раньше
	To       *time.Time // заезд не позже
	Limit    uint64
	Offset   uint64
}
