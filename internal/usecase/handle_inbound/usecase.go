package handle_inbound

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/responder"
)

// handleTimeout ограничение на обработку одного события из шины
const handleTimeout = 30 * time.Second

// UseCase обработка входящего сообщения из мессенджера
type UseCase struct {
	clients      ClientService
	transcripts  TranscriptRepository
	responder    Responder
	sessions     SessionToucher
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// metrics может быть nil, responder nil при выключенном автоответчике
func NewUseCase(
	clients ClientService,
	transcripts TranscriptRepository,
	responder Responder,
	sessions SessionToucher,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		clients:      clients,
		transcripts:  transcripts,
		responder:    responder,
		sessions:     sessions,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// HandleEvent подписчик топика входящих сообщений шины событий
func (uc *UseCase) HandleEvent(msg domain.InboundMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if _, err := uc.Execute(ctx, &Request{Message: msg}); err != nil {
		uc.logger.Error("HandleInbound: message id=%s from %s not processed: %v", msg.MessageID, msg.SenderJID, err)
	}
}

// Execute выполняет use case
// Неподдерживаемые сообщения отбрасываются без ошибки
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	msg := req.Message

	// 1. Текст сообщения, пустые и нетекстовые отбрасываем
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		uc.logger.Info("HandleInbound: dropping non-text message id=%s from %s", msg.MessageID, msg.SenderJID)
		uc.observe(ResultDroppedEmpty)
		return &Response{Result: ResultDroppedEmpty}, nil
	}

	// 2. Телефон отправителя из адреса транспорта
	phone, err := domain.PhoneFromJID(msg.SenderJID)
	if err != nil {
		uc.logger.Warn("HandleInbound: dropping message id=%s, sender %s is not phone addressed", msg.MessageID, msg.SenderJID)
		uc.observe(ResultDroppedAddress)
		return &Response{Result: ResultDroppedAddress}, nil
	}

	// 3. Клиент по телефону
	client, err := uc.clients.FindOrCreate(ctx, domain.Client{
		Phone:  phone,
		Source: domain.ClientSourceMessaging,
	})
	if err != nil {
		uc.observe(ResultFailed)
		return nil, fmt.Errorf("%w: find or create client: %v", ErrInternal, err)
	}

	// 4. Входящая запись переписки
	entry, err := uc.transcripts.Append(ctx, &domain.TranscriptEntry{
		ClientID:       client.ID,
		Source:         domain.MessageSourceTransport,
		Direction:      domain.DirectionFromClient,
		Content:        text,
		DeliveryStatus: domain.DeliveryReceived,
	})
	if err != nil {
		uc.observe(ResultFailed)
		return nil, fmt.Errorf("%w: append transcript: %v", ErrInternal, err)
	}

	// 5. Автоответ асинхронно
	if uc.responder != nil {
		uc.enqueueReply(msg, client.ID, phone, text)
	}

	// 6. Время последнего взаимодействия, ошибка не прерывает обработку
	at := msg.ReceivedAt
	if at.IsZero() {
		at = uc.timeProvider.Now()
	}
	if err := uc.sessions.Touch(ctx, phone, client.ID, at); err != nil {
		uc.logger.Warn("HandleInbound: failed to touch session for phone=%s: %v", phone, err)
	}

	uc.observe(ResultAccepted)
	uc.logger.Info("HandleInbound: message id=%s stored as entry id=%d for client id=%d", msg.MessageID, entry.ID, client.ID)

	return &Response{
		Result:   ResultAccepted,
		ClientID: client.ID,
		Phone:    phone,
		EntryID:  entry.ID,
	}, nil
}

func (uc *UseCase) observe(result string) {
	if uc.metrics != nil {
		uc.metrics.ObserveInbound(result)
	}
}

func (uc *UseCase) enqueueReply(msg domain.InboundMessage, clientID int64, phone, text string) {
	replyTo := msg.ChatJID
	if replyTo == "" {
		replyTo = msg.SenderJID
	}

	err := uc.responder.Enqueue(responder.Task{
		Text:         text,
		ClientID:     clientID,
		Phone:        phone,
		ReplyAddress: replyTo,
		HandleID:     msg.HandleID,
	})
	if err != nil {
		// сообщение уже сохранено, администратор ответит вручную
		if errors.Is(err, responder.ErrQueueFull) || errors.Is(err, responder.ErrStopped) {
			uc.logger.Warn("HandleInbound: auto reply skipped for client id=%d: %v", clientID, err)
		} else {
			uc.logger.Error("HandleInbound: auto reply failed for client id=%d: %v", clientID, err)
		}
	}
}
