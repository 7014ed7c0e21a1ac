package whatsapp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport"
)

const eventBuffer = 64

// conn одно подключение whatsmeow
// События whatsmeow перекладываются в очередь и отдаются менеджеру из отдельной
// горутины, чтобы обработчик менеджера не выполнялся внутри цикла whatsmeow.
type conn struct {
	client  *whatsmeow.Client
	handle  domain.TransportHandle
	onEvent func(transport.Event)
	printQR bool
	logger  Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan transport.Event
	once   sync.Once
}

func newConn(client *whatsmeow.Client, handle domain.TransportHandle, onEvent func(transport.Event), printQR bool, logger Logger) *conn {
	ctx, cancel := context.WithCancel(context.Background())

	c := &conn{
		client:  client,
		handle:  handle,
		onEvent: onEvent,
		printQR: printQR,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan transport.Event, eventBuffer),
	}
	go c.pump()
	return c
}

// Connect открывает сокет
// Для непривязанного устройства коды для сканирования приходят событиями EventPairingCode.
func (c *conn) Connect(ctx context.Context) error {
	if c.client.Store.ID == nil {
		// канал кодов живет столько же, сколько подключение, а не запрос оператора
		qrChan, err := c.client.GetQRChannel(c.ctx)
		if err != nil {
			return fmt.Errorf("get qr channel: %w", err)
		}
		go c.forwardCodes(qrChan)
	}

	if err := c.client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Send отправляет текст на номер или JID
func (c *conn) Send(ctx context.Context, to, text string) error {
	jid, err := recipientJID(to)
	if err != nil {
		return err
	}

	if !c.client.IsConnected() {
		return ErrNotConnected
	}

	msg := &waE2E.Message{Conversation: proto.String(text)}
	resp, err := c.client.SendMessage(ctx, jid, msg)
	if err != nil {
		return fmt.Errorf("%w: to=%s: %v", ErrSendFailed, jid, err)
	}

	c.logger.Info("Send: handle=%s message id=%s delivered to server, to=%s", c.handle.Name, resp.ID, jid)
	return nil
}

// Close закрывает сокет, повторный вызов ничего не делает
func (c *conn) Close() {
	c.once.Do(func() {
		c.cancel()
		c.client.RemoveEventHandlers()
		c.client.Disconnect()
	})
}

func (c *conn) pump() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.events:
			c.onEvent(ev)
		}
	}
}

func (c *conn) emit(ev transport.Event) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

func (c *conn) forwardCodes(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			if c.printQR {
				fmt.Fprintf(os.Stdout, "WhatsApp pairing code for handle %q:\n", c.handle.Name)
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
			}
			c.emit(transport.Event{Kind: transport.EventPairingCode, PairingCode: evt.Code})
		case "success":
			c.logger.Info("forwardCodes: handle=%s paired", c.handle.Name)
		default:
			// timeout и ошибки привязки: окно привязки контролирует менеджер
			c.logger.Warn("forwardCodes: handle=%s pairing event=%s, err=%v", c.handle.Name, evt.Event, evt.Error)
		}
	}
}

// handleEvent переводит события whatsmeow в события транспорта
func (c *conn) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		ev := transport.Event{Kind: transport.EventConnected}
		if id := c.client.Store.ID; id != nil {
			ev.Address = "+" + id.User
			ev.DeviceJID = id.String()
		}
		c.emit(ev)

	case *events.Disconnected:
		c.emit(transport.Event{Kind: transport.EventClosed, Reason: transport.CloseTransient})

	case *events.LoggedOut:
		c.emit(transport.Event{
			Kind:   transport.EventClosed,
			Reason: transport.CloseLoggedOut,
			Err:    fmt.Errorf("logged out: %s", v.Reason.String()),
		})

	case *events.StreamReplaced:
		// сессию забрал другой клиент, переподключение приведет к войне за сокет
		c.emit(transport.Event{
			Kind:   transport.EventClosed,
			Reason: transport.CloseLoggedOut,
			Err:    fmt.Errorf("stream replaced by another client"),
		})

	case *events.Message:
		if msg := inboundMessage(v, c.lookupPN); msg != nil {
			c.emit(transport.Event{Kind: transport.EventMessage, Message: msg})
		}
	}
}

// lookupPN номер телефона, который устройство сопоставило с LID
func (c *conn) lookupPN(lid types.JID) types.JID {
	if c.client == nil || c.client.Store == nil || c.client.Store.LIDs == nil {
		return types.EmptyJID
	}
	pn, err := c.client.Store.LIDs.GetPNForLID(c.ctx, lid)
	if err != nil {
		c.logger.Warn("lookupPN: handle=%s resolve phone for %s, err=%v", c.handle.Name, lid, err)
		return types.EmptyJID
	}
	return pn
}

// inboundMessage входящее личное сообщение или nil для своих, групповых и рассылочных
// Отправитель с LID-адресом (@lid) заменяется телефонным JID из SenderAlt,
// а если его нет, из сопоставления LID и номера в хранилище устройства.
// Тот же JID становится адресом ответа.
func inboundMessage(v *events.Message, lookupPN func(types.JID) types.JID) *domain.InboundMessage {
	if v.Info.IsFromMe || v.Info.IsGroup || v.Info.Chat.Server == types.BroadcastServer {
		return nil
	}

	sender := v.Info.Sender.ToNonAD()
	chat := v.Info.Chat.ToNonAD()
	if sender.Server == types.HiddenUserServer {
		pn := v.Info.SenderAlt.ToNonAD()
		if pn.IsEmpty() && lookupPN != nil {
			pn = lookupPN(sender).ToNonAD()
		}
		if !pn.IsEmpty() {
			if chat.IsEmpty() || chat.Server == types.HiddenUserServer {
				chat = pn
			}
			sender = pn
		}
	}

	return &domain.InboundMessage{
		MessageID:  string(v.Info.ID),
		SenderJID:  sender.String(),
		ChatJID:    chat.String(),
		Text:       messageText(v.Message),
		ReceivedAt: v.Info.Timestamp,
	}
}

// messageText текст обычного или расширенного текстового сообщения
// Для медиа, стикеров и прочих типов возвращает пустую строку.
func messageText(m *waE2E.Message) string {
	if m == nil {
		return ""
	}
	if text := m.GetConversation(); text != "" {
		return text
	}
	return m.GetExtendedTextMessage().GetText()
}

// recipientJID принимает JID ("77011234567@s.whatsapp.net") или номер ("+77011234567")
func recipientJID(to string) (types.JID, error) {
	if strings.Contains(to, "@") {
		jid, err := types.ParseJID(to)
		if err != nil {
			return types.JID{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecipient, to, err)
		}
		return jid, nil
	}

	phone, err := domain.NormalizePhone(to)
	if err != nil {
		return types.JID{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecipient, to, err)
	}
	return types.NewJID(domain.PhoneDigits(phone), types.DefaultUserServer), nil
}
