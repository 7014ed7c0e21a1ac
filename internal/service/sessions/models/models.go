package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// Request модели

// UpsertSessionRequest частичное обновление полей сессии
// Даты в формате "2025-06-01"
type UpsertSessionRequest struct {
	ContactName       *string  `json:"contactName,omitempty"`
	Email             *string  `json:"email,omitempty"`
	CheckIn           *string  `json:"checkIn,omitempty"`
	CheckOut          *string  `json:"checkOut,omitempty"`
	GuestCount        *int     `json:"guestCount,omitempty"`
	AccommodationType *string  `json:"accommodationType,omitempty"`
	TotalPrice        *float64 `json:"totalPrice,omitempty"`
	Notes             *string  `json:"notes,omitempty"`
}

// ToDomainPatch валидирует запрос и конвертирует его в domain патч
func (r *UpsertSessionRequest) ToDomainPatch() (domain.SessionPatch, error) {
	var patch domain.SessionPatch
	if r == nil {
		return patch, nil
	}

	var invalid []string

	if r.ContactName != nil {
		name := strings.TrimSpace(*r.ContactName)
		if name == "" {
			invalid = append(invalid, "contactName")
		}
		patch.ContactName = &name
	}
	if r.Email != nil {
		if _, err := mail.ParseAddress(*r.Email); err != nil {
			invalid = append(invalid, "email")
		}
		patch.Email = r.Email
	}
	if r.CheckIn != nil {
		t, err := time.Parse(domain.DateFormat, *r.CheckIn)
		if err != nil {
			invalid = append(invalid, "checkIn")
		}
		patch.CheckIn = &t
	}
	if r.CheckOut != nil {
		t, err := time.Parse(domain.DateFormat, *r.CheckOut)
		if err != nil {
			invalid = append(invalid, "checkOut")
		}
		patch.CheckOut = &t
	}
	if r.GuestCount != nil {
		if *r.GuestCount < 1 {
			invalid = append(invalid, "guestCount")
		}
		patch.GuestCount = r.GuestCount
	}
	if r.AccommodationType != nil {
		acc := strings.TrimSpace(*r.AccommodationType)
		if acc == "" {
			invalid = append(invalid, "accommodationType")
		}
		patch.AccommodationType = &acc
	}
	if r.TotalPrice != nil {
		if *r.TotalPrice < 0 {
			invalid = append(invalid, "totalPrice")
		}
		patch.TotalPrice = r.TotalPrice
	}
	if r.Notes != nil {
		if len([]rune(*r.Notes)) > domain.MaxNotesLength {
			invalid = append(invalid, "notes")
		}
		patch.Notes = r.Notes
	}

	if len(invalid) > 0 {
		return domain.SessionPatch{}, domain.NewValidationError("invalid session fields", invalid...)
	}

	// Если в запросе обе даты, выезд должен быть позже заезда
	if patch.CheckIn != nil && patch.CheckOut != nil && !patch.CheckOut.After(*patch.CheckIn) {
		return domain.SessionPatch{}, domain.NewValidationError("checkOut must be after checkIn", "checkOut")
	}

	return patch, nil
}

// TransitionStageRequest запрос на смену стадии
type TransitionStageRequest struct {
	Stage  string                `json:"stage"`
	Fields *UpsertSessionRequest `json:"fields,omitempty"`
}

// BlockRequest запрос на блокировку автоответов
type BlockRequest struct {
	Until *time.Time `json:"until,omitempty"`
}

// ListSessionsRequest фильтр списка сессий
type ListSessionsRequest struct {
	Stage   *string
	Blocked *bool
	Limit   uint64
	Offset  uint64
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListSessionsRequest) ToDomainFilter() (domain.SessionFilter, error) {
	filter := domain.SessionFilter{
		Blocked: r.Blocked,
		Limit:   r.Limit,
		Offset:  r.Offset,
	}

	if filter.Limit == 0 {
		filter.Limit = domain.DefaultSessionListLimit
	}
	if filter.Limit > domain.MaxListLimit {
		filter.Limit = domain.MaxListLimit
	}

	if r.Stage != nil {
		stage, err := domain.ParseStage(*r.Stage)
		if err != nil {
			return filter, err
		}
		filter.Stage = &stage
	}

	return filter, nil
}

// Response модели

// SessionResponse ответ с данными сессии
type SessionResponse struct {
	ID                int64      `json:"id"`
	PhoneNumber       string     `json:"phoneNumber"`
	Stage             string     `json:"stage"`
	ClientID          *int64     `json:"clientId,omitempty"`
	BookingID         *int64     `json:"bookingId,omitempty"`
	ContactName       *string    `json:"contactName,omitempty"`
	Email             *string    `json:"email,omitempty"`
	CheckIn           *string    `json:"checkIn,omitempty"`  // "2025-06-01"
	CheckOut          *string    `json:"checkOut,omitempty"` // "2025-06-03"
	GuestCount        *int       `json:"guestCount,omitempty"`
	AccommodationType *string    `json:"accommodationType,omitempty"`
	TotalPrice        *float64   `json:"totalPrice,omitempty"`
	Blocked           bool       `json:"blocked"`
	BlockedUntil      *time.Time `json:"blockedUntil,omitempty"`
	LastInteractionAt *time.Time `json:"lastInteractionAt,omitempty"`
	Notes             *string    `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionListResponse ответ со списком сессий
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// Методы конвертации

// FromDomainSession конвертирует domain модель в DTO
func FromDomainSession(s *domain.Session) *SessionResponse {
	if s == nil {
		return nil
	}

	return &SessionResponse{
		ID:                s.ID,
		PhoneNumber:       s.PhoneNumber,
		Stage:             string(s.Stage),
		ClientID:          s.ClientID,
		BookingID:         s.BookingID,
		ContactName:       s.ContactName,
		Email:             s.Email,
		CheckIn:           formatDate(s.CheckIn),
		CheckOut:          formatDate(s.CheckOut),
		GuestCount:        s.GuestCount,
		AccommodationType: s.AccommodationType,
		TotalPrice:        s.TotalPrice,
		Blocked:           s.Blocked,
		BlockedUntil:      s.BlockedUntil,
		LastInteractionAt: s.LastInteractionAt,
		Notes:             s.Notes,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// FromDomainSessionList конвертирует список domain моделей в DTO
func FromDomainSessionList(sessions []*domain.Session) *SessionListResponse {
	resp := &SessionListResponse{
		Sessions: make([]SessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, *FromDomainSession(s))
	}
	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(domain.DateFormat)
	return &v
}
