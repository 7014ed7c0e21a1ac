package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	clientRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/client"
)

// Clients хранилище клиентов с уникальным телефоном
type Clients struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]*domain.Client

	// Delay имитирует задержку вставки, чтобы проверять гонки
	Delay time.Duration
}

func NewClients() *Clients {
	return &Clients{rows: make(map[string]*domain.Client)}
}

func (s *Clients) FindOrCreate(_ context.Context, c *domain.Client) (*domain.Client, bool, error) {
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.rows[c.Phone]; ok {
		cp := *existing
		return &cp, false, nil
	}

	s.nextID++
	row := *c
	row.ID = s.nextID
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	s.rows[c.Phone] = &row

	cp := row
	return &cp, true, nil
}

func (s *Clients) GetByPhone(_ context.Context, phone string) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[phone]
	if !ok {
		return nil, clientRepo.ErrClientNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *Clients) GetByID(_ context.Context, id int64) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID == id {
			cp := *row
			return &cp, nil
		}
	}
	return nil, clientRepo.ErrClientNotFound
}

// Count количество клиентов
func (s *Clients) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
