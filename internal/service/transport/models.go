package transport

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// EventKind тип события подключения
type EventKind int

const (
	// EventPairingCode готов новый код для сканирования
	EventPairingCode EventKind = iota + 1
	// EventConnected подключение установлено
	EventConnected
	// EventClosed подключение закрыто
	EventClosed
	// EventMessage входящее сообщение
	EventMessage
)

// CloseReason причина закрытия подключения
type CloseReason int

const (
	// CloseTransient обрыв, стоит переподключиться
	CloseTransient CloseReason = iota
	// CloseLoggedOut пользователь отвязал устройство
	CloseLoggedOut
)

// Event событие драйвера
type Event struct {
	Kind        EventKind
	PairingCode string
	Address     string // номер привязанного аккаунта
	DeviceJID   string
	Reason      CloseReason
	Err         error
	Message     *domain.InboundMessage
}

// Config параметры менеджера
type Config struct {
	PairingTimeout     time.Duration
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
	MaxReconnects      int
	SendRate           rate.Limit
	SendBurst          int
	ReconnectOnBoot    bool
}

// reconnectDelay задержка перед попыткой attempt (с единицы): base * 2^(attempt-1), не больше max
func (c Config) reconnectDelay(attempt int) time.Duration {
	d := c.ReconnectBaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if c.ReconnectMaxDelay > 0 && d >= c.ReconnectMaxDelay {
			return c.ReconnectMaxDelay
		}
	}
	if c.ReconnectMaxDelay > 0 && d > c.ReconnectMaxDelay {
		return c.ReconnectMaxDelay
	}
	return d
}
