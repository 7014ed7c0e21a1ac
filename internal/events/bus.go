// Package events внутренняя шина событий процесса
//
// Транспорт публикует входящие сообщения и смену состояния хэндлов,
// конвейер обработки и метрики подписываются на нужные топики.
package events

import (
	evbus "github.com/asaskevich/EventBus"
)

// Топики шины
const (
	// TopicInboundMessage аргумент domain.InboundMessage
	TopicInboundMessage = "transport:inbound"

	// TopicTransportState аргумент domain.TransportHandle
	TopicTransportState = "transport:state"
)

// Bus шина событий
type Bus = evbus.Bus

// NewBus создает шину
func NewBus() Bus {
	return evbus.New()
}
