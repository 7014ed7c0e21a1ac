package models

import (
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// CreateHandleRequest запрос на создание хэндла
type CreateHandleRequest struct {
	Name string `json:"name"`
}

// HandleResponse состояние хэндла для панели администратора
type HandleResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	PairingArtifact *string    `json:"pairingArtifact,omitempty"` // содержимое QR кода
	BoundPhone      *string    `json:"boundPhoneNumber,omitempty"`
	LastError       *string    `json:"lastError,omitempty"`
	LastActivityAt  *time.Time `json:"lastActivityAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HandleListResponse ответ со списком хэндлов
type HandleListResponse struct {
	Transports []HandleResponse `json:"transports"`
}

// FromDomainHandle конвертирует domain модель в DTO
// DeviceJID наружу не отдается
func FromDomainHandle(h *domain.TransportHandle) *HandleResponse {
	if h == nil {
		return nil
	}
	return &HandleResponse{
		ID:              h.ID,
		Name:            h.Name,
		Status:          string(h.Status),
		PairingArtifact: h.PairingArtifact,
		BoundPhone:      h.BoundPhone,
		LastError:       h.LastError,
		LastActivityAt:  h.LastActivityAt,
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
}

// FromDomainHandleList конвертирует список domain моделей в DTO
func FromDomainHandleList(handles []*domain.TransportHandle) *HandleListResponse {
	resp := &HandleListResponse{Transports: make([]HandleResponse, 0, len(handles))}
	for _, h := range handles {
		resp.Transports = append(resp.Transports, *FromDomainHandle(h))
	}
	return resp
}
