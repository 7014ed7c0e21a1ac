package models

import (
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// Request модели

// IssueRequest запрос на выставление ссылки на оплату
// SessionID по умолчанию берётся из бронирования
type IssueRequest struct {
	SessionID *int64  `json:"sessionId,omitempty"`
	Amount    float64 `json:"amount"`
	Currency  *string `json:"currency,omitempty"`
}

// SubmitProofRequest ссылка на уже загруженный файл подтверждения
type SubmitProofRequest struct {
	ArtifactURL string `json:"artifactUrl"`
}

// Response модели

// PaymentLinkResponse ответ с данными платёжной ссылки
type PaymentLinkResponse struct {
	ID                 int64      `json:"id"`
	BookingID          int64      `json:"bookingId"`
	SessionID          int64      `json:"sessionId"`
	Reference          string     `json:"reference"`
	Amount             float64    `json:"amount"`
	Currency           string     `json:"currency"`
	ExternalPaymentURL string     `json:"externalPaymentUrl"`
	ProofArtifactURL   *string    `json:"proofArtifactUrl,omitempty"`
	Status             string     `json:"status"`
	ExpiresAt          time.Time  `json:"expiresAt"`
	VerifiedBy         *string    `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaymentLinkListResponse ответ со списком ссылок
type PaymentLinkListResponse struct {
	PaymentLinks []PaymentLinkResponse `json:"paymentLinks"`
}

// FromDomainPaymentLink конвертирует domain модель в DTO
func FromDomainPaymentLink(l *domain.PaymentLink) *PaymentLinkResponse {
	if l == nil {
		return nil
	}

	return &PaymentLinkResponse{
		ID:                 l.ID,
		BookingID:          l.BookingID,
		SessionID:          l.SessionID,
		Reference:          l.Reference,
		Amount:             l.Amount,
		Currency:           l.Currency,
		ExternalPaymentURL: l.ExternalPaymentURL,
		ProofArtifactURL:   l.ProofArtifactURL,
		Status:             string(l.Status),
		ExpiresAt:          l.ExpiresAt,
		VerifiedBy:         l.VerifiedBy,
		VerifiedAt:         l.VerifiedAt,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// FromDomainPaymentLinkList конвертирует список domain моделей в DTO
func FromDomainPaymentLinkList(links []*domain.PaymentLink) *PaymentLinkListResponse {
	resp := &PaymentLinkListResponse{
		PaymentLinks: make([]PaymentLinkResponse, 0, len(links)),
	}
	for _, l := range links {
		resp.PaymentLinks = append(resp.PaymentLinks, *FromDomainPaymentLink(l))
	}
	return resp
}
