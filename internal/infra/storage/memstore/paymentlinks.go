package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	linkRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/paymentlink"
)

// PaymentLinks хранилище платёжных ссылок
type PaymentLinks struct {
	mu   sync.Mutex
	rows []*domain.PaymentLink
}

func NewPaymentLinks() *PaymentLinks {
	return &PaymentLinks{}
}

func (s *PaymentLinks) Create(_ context.Context, l *domain.PaymentLink) (*domain.PaymentLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := *l
	row.ID = int64(len(s.rows) + 1)
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	s.rows = append(s.rows, &row)

	cp := row
	return &cp, nil
}

func (s *PaymentLinks) GetByID(_ context.Context, id int64) (*domain.PaymentLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID == id {
			cp := *row
			return &cp, nil
		}
	}
	return nil, linkRepo.ErrLinkNotFound
}

func (s *PaymentLinks) ListByBooking(_ context.Context, bookingID int64) ([]*domain.PaymentLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.PaymentLink, 0)
	for i := len(s.rows) - 1; i >= 0; i-- {
		if s.rows[i].BookingID == bookingID {
			cp := *s.rows[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *PaymentLinks) Update(_ context.Context, l *domain.PaymentLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID == l.ID {
			row.Status = l.Status
			row.ProofArtifactURL = l.ProofArtifactURL
			row.VerifiedBy = l.VerifiedBy
			row.VerifiedAt = l.VerifiedAt
			row.UpdatedAt = time.Now()
			return nil
		}
	}
	return linkRepo.ErrLinkNotFound
}

func (s *PaymentLinks) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, row := range s.rows {
		if (row.Status == domain.PaymentPending || row.Status == domain.PaymentProofSubmitted) && !row.ExpiresAt.After(now) {
			row.Status = domain.PaymentExpired
			n++
		}
	}
	return n, nil
}
