package send_manual_message

import "time"

// Request сообщение администратора клиенту
type Request struct {
	Phone    string `json:"-"`
	Text     string `json:"text"`
	HandleID *int64 `json:"handleId,omitempty"` // по умолчанию первый подключенный хэндл
}

// Response записанное сообщение
type Response struct {
	EntryID        int64     `json:"entryId"`
	ClientID       int64     `json:"clientId"`
	HandleID       int64     `json:"handleId"`
	DeliveryStatus string    `json:"deliveryStatus"`
	CreatedAt      time.Time `json:"createdAt"`
}
