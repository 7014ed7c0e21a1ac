package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	sessionRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/session"
)

// Sessions хранилище сессий
type Sessions struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]*domain.Session
}

func NewSessions() *Sessions {
	return &Sessions{rows: make(map[string]*domain.Session)}
}

func (s *Sessions) Upsert(_ context.Context, phone string, patch domain.SessionPatch) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[phone]
	if !ok {
		s.nextID++
		row = &domain.Session{
			ID:          s.nextID,
			PhoneNumber: phone,
			Stage:       domain.StageInitial,
			CreatedAt:   time.Now(),
		}
		s.rows[phone] = row
	}
	row.Apply(patch)
	row.UpdatedAt = time.Now()

	return copySession(row), nil
}

func (s *Sessions) GetByPhone(_ context.Context, phone string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[phone]
	if !ok {
		return nil, sessionRepo.ErrSessionNotFound
	}
	return copySession(row), nil
}

func (s *Sessions) GetByID(_ context.Context, id int64) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.byIDLocked(id)
	if row == nil {
		return nil, sessionRepo.ErrSessionNotFound
	}
	return copySession(row), nil
}

func (s *Sessions) UpdateStage(_ context.Context, phone string, stage domain.Stage, patch domain.SessionPatch, at time.Time) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[phone]
	if !ok {
		return nil, sessionRepo.ErrSessionNotFound
	}
	row.Apply(patch)
	row.Stage = stage
	row.LastInteractionAt = &at
	row.UpdatedAt = time.Now()
	return copySession(row), nil
}

func (s *Sessions) SetBlocked(_ context.Context, phone string, blocked bool, until *time.Time) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[phone]
	if !ok {
		return nil, sessionRepo.ErrSessionNotFound
	}
	row.Blocked = blocked
	row.BlockedUntil = until
	return copySession(row), nil
}

func (s *Sessions) LinkBooking(_ context.Context, id int64, clientID, bookingID int64, stage domain.Stage) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.byIDLocked(id)
	if row == nil {
		return nil, sessionRepo.ErrSessionNotFound
	}
	row.ClientID = &clientID
	row.BookingID = &bookingID
	row.Stage = stage
	return copySession(row), nil
}

func (s *Sessions) SetStageByID(_ context.Context, id int64, stage domain.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.byIDLocked(id)
	if row == nil {
		return sessionRepo.ErrSessionNotFound
	}
	row.Stage = stage
	return nil
}

func (s *Sessions) List(_ context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Session, 0, len(s.rows))
	for _, row := range s.rows {
		if filter.Stage != nil && row.Stage != *filter.Stage {
			continue
		}
		if filter.Blocked != nil && row.Blocked != *filter.Blocked {
			continue
		}
		out = append(out, copySession(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *Sessions) ReleaseExpiredBlocks(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, row := range s.rows {
		if row.Blocked && row.BlockedUntil != nil && !row.BlockedUntil.After(now) {
			row.Blocked = false
			row.BlockedUntil = nil
			n++
		}
	}
	return n, nil
}

// Count количество сессий
func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *Sessions) byIDLocked(id int64) *domain.Session {
	for _, row := range s.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func copySession(s *domain.Session) *domain.Session {
	c := *s
	return &c
}

func page[T any](items []T, limit, offset uint64) []T {
	if offset >= uint64(len(items)) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < uint64(len(items)) {
		items = items[:limit]
	}
	return items
}
