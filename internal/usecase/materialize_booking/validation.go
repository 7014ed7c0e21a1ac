package materialize_booking

import (
	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// validateSession проверяет, что в сессии накоплено всё нужное для бронирования
func validateSession(s *domain.Session) error {
	if missing := s.MissingBookingFields(); len(missing) > 0 {
		return domain.NewValidationError("session is missing booking fields", missing...)
	}

	if !s.CheckOut.After(*s.CheckIn) {
		return domain.NewValidationError("check-out must be after check-in", "checkOut")
	}

	if s.GuestCount != nil && *s.GuestCount < 1 {
		return domain.NewValidationError("guest count must be at least 1", "guestCount")
	}

	if s.TotalPrice != nil && *s.TotalPrice < 0 {
		return domain.NewValidationError("total price must not be negative", "totalPrice")
	}

	return nil
}
