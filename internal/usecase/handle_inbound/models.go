package handle_inbound

import "github.com/m04kA/GlampingBackoffice/internal/domain"

// Request входящее сообщение транспорта
type Request struct {
	Message domain.InboundMessage
}

// Response результат обработки
type Response struct {
	Result   string // см. Result* константы
	ClientID int64
	Phone    string
	EntryID  int64
}

// Результат обработки входящего сообщения (метка метрики)
const (
	ResultAccepted       = "accepted"
	ResultDroppedEmpty   = "dropped_empty"
	ResultDroppedAddress = "dropped_address"
	ResultFailed         = "failed"
)
