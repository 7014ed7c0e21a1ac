package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	bookingRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/booking"
)

// Bookings хранилище бронирований
type Bookings struct {
	mu   sync.Mutex
	rows []*domain.Booking
}

func NewBookings() *Bookings {
	return &Bookings{}
}

func (s *Bookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := *b
	row.ID = int64(len(s.rows) + 1)
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	s.rows = append(s.rows, &row)

	cp := row
	return &cp, nil
}

func (s *Bookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.byIDLocked(id)
	if row == nil {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *Bookings) List(_ context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Booking, 0)
	for _, row := range s.rows {
		if filter.ClientID != nil && row.ClientID != *filter.ClientID {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		if filter.From != nil && row.CheckIn.Before(*filter.From) {
			continue
		}
		if filter.To != nil && row.CheckIn.After(*filter.To) {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *Bookings) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.byIDLocked(id)
	if row == nil {
		return bookingRepo.ErrBookingNotFound
	}
	row.Status = status
	return nil
}

func (s *Bookings) Cancel(_ context.Context, id int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.byIDLocked(id)
	if row == nil {
		return bookingRepo.ErrBookingNotFound
	}
	now := time.Now()
	row.Status = domain.StatusCancelled
	row.CancellationReason = &reason
	row.CancelledAt = &now
	return nil
}

// Count количество бронирований
func (s *Bookings) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *Bookings) byIDLocked(id int64) *domain.Booking {
	for _, row := range s.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}
