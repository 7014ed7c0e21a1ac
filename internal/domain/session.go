package domain

import "time"

// Session состояние диалога с одним номером телефона
type Session struct {
	ID                int64
	PhoneNumber       string
	Stage             Stage
	ClientID          *int64
	BookingID         *int64
	ContactName       *string
	Email             *string
	CheckIn           *time.Time
	CheckOut          *time.Time
	GuestCount        *int
	AccommodationType *string
	TotalPrice        *float64
	Blocked           bool
	BlockedUntil      *time.Time
	LastInteractionAt *time.Time
	Notes             *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionPatch частичное обновление сессии
// nil поле означает "не менять"
type SessionPatch struct {
	ClientID          *int64
	ContactName       *string
	Email             *string
	CheckIn           *time.Time
	CheckOut          *time.Time
	GuestCount        *int
	AccommodationType *string
	TotalPrice        *float64
	LastInteractionAt *time.Time
	Notes             *string
}

// Apply накладывает непустые поля патча поверх сессии
// Время последнего взаимодействия только растет.
func (s *Session) Apply(p SessionPatch) {
	if p.ClientID != nil {
		s.ClientID = p.ClientID
	}
	if p.ContactName != nil {
		s.ContactName = p.ContactName
	}
	if p.Email != nil {
		s.Email = p.Email
	}
	if p.CheckIn != nil {
		s.CheckIn = p.CheckIn
	}
	if p.CheckOut != nil {
		s.CheckOut = p.CheckOut
	}
	if p.GuestCount != nil {
		s.GuestCount = p.GuestCount
	}
	if p.AccommodationType != nil {
		s.AccommodationType = p.AccommodationType
	}
	if p.TotalPrice != nil {
		s.TotalPrice = p.TotalPrice
	}
	if p.LastInteractionAt != nil && (s.LastInteractionAt == nil || p.LastInteractionAt.After(*s.LastInteractionAt)) {
		s.LastInteractionAt = p.LastInteractionAt
	}
	if p.Notes != nil {
		s.Notes = p.Notes
	}
}

// IsBlocked true, если автоответы для сессии приостановлены на момент now
func (s *Session) IsBlocked(now time.Time) bool {
	if !s.Blocked {
		return false
	}
	return s.BlockedUntil == nil || now.Before(*s.BlockedUntil)
}

// MissingBookingFields поля, без которых нельзя создать бронирование
func (s *Session) MissingBookingFields() []string {
	missing := make([]string, 0, 4)
	if s.ContactName == nil || *s.ContactName == "" {
		missing = append(missing, "contactName")
	}
	if s.CheckIn == nil {
		missing = append(missing, "checkIn")
	}
	if s.CheckOut == nil {
		missing = append(missing, "checkOut")
	}
	if s.AccommodationType == nil || *s.AccommodationType == "" {
		missing = append(missing, "accommodationType")
	}
	return missing
}

// SessionFilter фильтр списка сессий
type SessionFilter struct {
	Stage   *Stage
	Blocked *bool
	Limit   uint64
	Offset  uint64
}
