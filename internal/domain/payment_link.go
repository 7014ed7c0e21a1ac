package domain

import "time"

// PaymentLinkStatus статус платёжной ссылки
type PaymentLinkStatus string

const (
	PaymentPending        PaymentLinkStatus = "pending"
	PaymentProofSubmitted PaymentLinkStatus = "proof_submitted"
	PaymentVerified       PaymentLinkStatus = "verified"
	PaymentExpired        PaymentLinkStatus = "expired"
)

// PaymentLink ссылка на оплату бронирования
type PaymentLink struct {
	ID                 int64
	BookingID          int64
	SessionID          int64
	Reference          string
	Amount             float64
	Currency           string
	ExternalPaymentURL string
	ProofArtifactURL   *string
	Status             PaymentLinkStatus
	ExpiresAt          time.Time
	VerifiedBy         *string
	VerifiedAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired ссылка просрочена и ещё не подтверждена
func (l *PaymentLink) IsExpired(now time.Time) bool {
	if l.Status == PaymentVerified {
		return false
	}
	return l.Status == PaymentExpired || !now.Before(l.ExpiresAt)
}
