package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

func TestBus_InboundAsync(t *testing.T) {
	bus := NewBus()

	got := make(chan domain.InboundMessage, 1)
	require.NoError(t, bus.SubscribeAsync(TopicInboundMessage, func(msg domain.InboundMessage) {
		got <- msg
	}, false))

	bus.Publish(TopicInboundMessage, domain.InboundMessage{HandleID: 1, Text: "Здравствуйте"})

	select {
	case msg := <-got:
		assert.Equal(t, "Здравствуйте", msg.Text)
	case <-time.After(time.Second):
		t.Fatal("inbound message was not delivered")
	}
	bus.WaitAsync()
}

func TestBus_StateSync(t *testing.T) {
	bus := NewBus()

	var last domain.TransportStatus
	require.NoError(t, bus.Subscribe(TopicTransportState, func(h domain.TransportHandle) {
		last = h.Status
	}))

	bus.Publish(TopicTransportState, domain.TransportHandle{Status: domain.TransportConnected})
	assert.Equal(t, domain.TransportConnected, last)
}
