package domain

import "time"

// MessageSource откуда пришло сообщение
type MessageSource string

const (
	MessageSourceTransport   MessageSource = "transport"
	MessageSourceManualAdmin MessageSource = "manual_admin"
)

// Direction направление сообщения
type Direction string

const (
	DirectionFromClient Direction = "from_client"
	DirectionToClient   Direction = "to_client"
)

// DeliveryStatus статус доставки записи переписки
type DeliveryStatus string

const (
	DeliveryReceived DeliveryStatus = "received"
	DeliverySent     DeliveryStatus = "sent"
	DeliveryFailed   DeliveryStatus = "failed"
)

// TranscriptEntry одно сообщение переписки, после записи не меняется
type TranscriptEntry struct {
	ID             int64
	ClientID       int64
	Source         MessageSource
	Direction      Direction
	Content        string
	DeliveryStatus DeliveryStatus
	CreatedAt      time.Time
}
