package materialize_booking

import "github.com/m04kA/GlampingBackoffice/internal/domain"

// Request модель запроса на создание бронирования из сессии
type Request struct {
	Phone string // телефон сессии в любом формате
}

// Response модель ответа
type Response struct {
	Booking   *domain.Booking
	SessionID int64
	ClientID  int64
	Created   bool // false, если сессия уже была связана с бронированием
}
