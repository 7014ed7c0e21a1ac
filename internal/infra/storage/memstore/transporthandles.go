package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	handleRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/transporthandle"
)

// TransportHandles хранилище хэндлов транспорта
type TransportHandles struct {
	mu   sync.Mutex
	rows []*domain.TransportHandle
}

func NewTransportHandles() *TransportHandles {
	return &TransportHandles{}
}

func (s *TransportHandles) Create(_ context.Context, name string) (*domain.TransportHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.Name == name {
			return nil, handleRepo.ErrDuplicateName
		}
	}

	row := &domain.TransportHandle{
		ID:        int64(len(s.rows) + 1),
		Name:      name,
		Status:    domain.TransportDisconnected,
		CreatedAt: time.Now(),
	}
	s.rows = append(s.rows, row)

	cp := *row
	return &cp, nil
}

func (s *TransportHandles) GetByID(_ context.Context, id int64) (*domain.TransportHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.byIDLocked(id)
	if row == nil {
		return nil, handleRepo.ErrHandleNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *TransportHandles) List(_ context.Context, statuses ...domain.TransportStatus) ([]*domain.TransportHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.TransportHandle, 0)
	for _, row := range s.rows {
		if len(statuses) > 0 && !containsStatus(statuses, row.Status) {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (s *TransportHandles) SaveState(_ context.Context, h *domain.TransportHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.byIDLocked(h.ID)
	if row == nil {
		return handleRepo.ErrHandleNotFound
	}
	*row = *h
	row.UpdatedAt = time.Now()
	return nil
}

func (s *TransportHandles) TouchActivity(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row := s.byIDLocked(id); row != nil {
		row.LastActivityAt = &at
	}
	return nil
}

// Put кладет хэндл как есть (подготовка состояния "до рестарта")
func (s *TransportHandles) Put(h domain.TransportHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := h
	s.rows = append(s.rows, &cp)
}

func (s *TransportHandles) byIDLocked(id int64) *domain.TransportHandle {
	for _, row := range s.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func containsStatus(list []domain.TransportStatus, s domain.TransportStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
