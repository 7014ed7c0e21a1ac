package get_transcript

import (
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// Request запрос переписки по телефону
type Request struct {
	Phone  string
	Limit  uint64
	Offset uint64
}

// Entry одно сообщение переписки
type Entry struct {
	ID             int64     `json:"id"`
	Source         string    `json:"source"`
	Direction      string    `json:"direction"`
	Content        string    `json:"content"`
	DeliveryStatus string    `json:"deliveryStatus"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Response переписка в хронологическом порядке
type Response struct {
	Phone    string  `json:"phoneNumber"`
	ClientID *int64  `json:"clientId,omitempty"`
	Entries  []Entry `json:"entries"`
}

func fromDomainEntries(entries []*domain.TranscriptEntry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, Entry{
			ID:             e.ID,
			Source:         string(e.Source),
			Direction:      string(e.Direction),
			Content:        e.Content,
			DeliveryStatus: string(e.DeliveryStatus),
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}
