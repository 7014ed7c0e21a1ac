package domain

import "time"

// TransportStatus состояние хэндла транспорта
type TransportStatus string

const (
	TransportDisconnected      TransportStatus = "disconnected"
	TransportWaitingForPairing TransportStatus = "waiting_for_pairing"
	TransportConnected         TransportStatus = "connected"
)

// TransportStatuses все состояния (для метрик)
var TransportStatuses = []string{
	string(TransportDisconnected),
	string(TransportWaitingForPairing),
	string(TransportConnected),
}

// TransportHandle персистентное отражение одного подключения к мессенджеру
type TransportHandle struct {
	ID              int64
	Name            string
	Status          TransportStatus
	PairingArtifact *string // QR код для сканирования
	BoundPhone      *string
	DeviceJID       *string // устройство в хранилище транспорта, переживает рестарт
	LastError       *string
	LastActivityAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InboundMessage входящее событие транспорта
type InboundMessage struct {
	HandleID   int64
	MessageID  string
	SenderJID  string
	ChatJID    string
	Text       string // пусто для неподдерживаемых типов сообщений
	ReceivedAt time.Time
}
