package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// Validate причина обязательна и ограничена по длине
func (r *CancelBookingRequest) Validate() error {
	reason := strings.TrimSpace(r.CancellationReason)
	if reason == "" {
		return domain.NewValidationError("cancellation reason is required", "cancellationReason")
	}
	if utf8.RuneCountInString(reason) > domain.MaxCancellationReasonLength {
		return domain.NewValidationError("cancellation reason is too long", "cancellationReason")
	}
	r.CancellationReason = reason
	return nil
}

// ListBookingsRequest фильтр списка бронирований
type ListBookingsRequest struct {
	ClientID *int64
	Status   *string
	From     *string // "2006-01-02", заезд не раньше
	To       *string // "2006-01-02", заезд не позже
	Limit    uint64
	Offset   uint64
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingFilter, error) {
	filter := domain.BookingFilter{
		ClientID: r.ClientID,
		Limit:    r.Limit,
		Offset:   r.Offset,
	}
	if filter.Limit == 0 {
		filter.Limit = domain.DefaultSessionListLimit
	}
	if filter.Limit > domain.MaxListLimit {
		filter.Limit = domain.MaxListLimit
	}

	var fields []string
	if r.Status != nil {
		status, err := domain.ParseBookingStatus(*r.Status)
		if err != nil {
			fields = append(fields, "status")
		} else {
			filter.Status = &status
		}
	}
	if r.From != nil {
		from, err := time.Parse(domain.DateFormat, *r.From)
		if err != nil {
			fields = append(fields, "from")
		} else {
			filter.From = &from
		}
	}
	if r.To != nil {
		to, err := time.Parse(domain.DateFormat, *r.To)
		if err != nil {
			fields = append(fields, "to")
		} else {
			filter.To = &to
		}
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		fields = append(fields, "to")
	}

	if len(fields) > 0 {
		return filter, domain.NewValidationError("invalid booking filter", fields...)
	}
	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                int64   `json:"id"`
	ClientID          int64   `json:"clientId"`
	SessionID         *int64  `json:"sessionId,omitempty"`
	AccommodationType string  `json:"accommodationType"`
	CheckIn           string  `json:"checkIn"`  // "2025-06-01"
	CheckOut          string  `json:"checkOut"` // "2025-06-03"
	Nights            int     `json:"nights"`
	GuestCount        int     `json:"guestCount"`
	ContactName       string  `json:"contactName"`
	ContactEmail      string  `json:"contactEmail"`
	ContactPhone      string  `json:"contactPhone"`
	TotalPrice        float64 `json:"totalPrice"`
	Status            string  `json:"status"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		ClientID:           b.ClientID,
		SessionID:          b.SessionID,
		AccommodationType:  b.AccommodationType,
		CheckIn:            b.CheckIn.Format(domain.DateFormat),
		CheckOut:           b.CheckOut.Format(domain.DateFormat),
		Nights:             b.Nights(),
		GuestCount:         b.GuestCount,
		ContactName:        b.ContactName,
		ContactEmail:       b.ContactEmail,
		ContactPhone:       b.ContactPhone,
		TotalPrice:         b.TotalPrice,
		Status:             string(b.Status),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
