package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// Transcripts журнал переписки
type Transcripts struct {
	mu      sync.Mutex
	entries []*domain.TranscriptEntry
}

func NewTranscripts() *Transcripts {
	return &Transcripts{}
}

func (s *Transcripts) Append(_ context.Context, entry *domain.TranscriptEntry) (*domain.TranscriptEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := *entry
	row.ID = int64(len(s.entries) + 1)
	row.CreatedAt = time.Now()
	s.entries = append(s.entries, &row)

	cp := row
	return &cp, nil
}

func (s *Transcripts) ListByClient(_ context.Context, clientID int64, limit, offset uint64) ([]*domain.TranscriptEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.TranscriptEntry, 0)
	for _, e := range s.entries {
		if e.ClientID == clientID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

// All все записи в порядке добавления
func (s *Transcripts) All() []domain.TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.TranscriptEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
	}
	return out
}
