package send_manual_message

import (
	"context"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

// UseCase отправка сообщения клиенту от имени администратора
type UseCase struct {
	clients      ClientService
	transcripts  TranscriptRepository
	transport    Transport
	sessions     SessionToucher
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	clients ClientService,
	transcripts TranscriptRepository,
	transport Transport,
	sessions SessionToucher,
	logger Logger,
) *UseCase {
	return &UseCase{
		clients:      clients,
		transcripts:  transcripts,
		transport:    transport,
		sessions:     sessions,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute отправляет сообщение и записывает его в переписку
// Неудачная отправка тоже записывается, со статусом failed
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	phone, text, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("SendManualMessage: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("SendManualMessage: phone=%s, length=%d", phone, len(text))

	// 2. Хэндл для отправки
	handleID, err := uc.pickHandle(ctx, req.HandleID)
	if err != nil {
		return nil, err
	}

	// 3. Клиент по телефону
	client, err := uc.clients.FindOrCreate(ctx, domain.Client{
		Phone:  phone,
		Source: domain.ClientSourceManual,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: find or create client: %v", ErrInternal, err)
	}

	// 4. Отправка
	status := domain.DeliverySent
	sendErr := uc.transport.Send(ctx, handleID, domain.PhoneDigits(phone), text)
	if sendErr != nil {
		status = domain.DeliveryFailed
		uc.logger.Warn("SendManualMessage: send via handle id=%d to %s failed: %v", handleID, phone, sendErr)
	}

	// 5. Запись в переписку, в том числе неудачная
	entry, err := uc.transcripts.Append(context.WithoutCancel(ctx), &domain.TranscriptEntry{
		ClientID:       client.ID,
		Source:         domain.MessageSourceManualAdmin,
		Direction:      domain.DirectionToClient,
		Content:        text,
		DeliveryStatus: status,
	})
	if err != nil {
		uc.logger.Error("SendManualMessage: failed to append transcript for client id=%d: %v", client.ID, err)
		return nil, fmt.Errorf("%w: append transcript: %v", ErrInternal, err)
	}

	if sendErr != nil {
		return nil, fmt.Errorf("%w: entry id=%d: %v", ErrSendFailed, entry.ID, sendErr)
	}

	// 6. Время последнего взаимодействия
	if err := uc.sessions.Touch(ctx, phone, client.ID, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("SendManualMessage: failed to touch session for phone=%s: %v", phone, err)
	}

	uc.logger.Info("SendManualMessage: entry id=%d sent to client id=%d via handle id=%d", entry.ID, client.ID, handleID)
	return &Response{
		EntryID:        entry.ID,
		ClientID:       client.ID,
		HandleID:       handleID,
		DeliveryStatus: string(entry.DeliveryStatus),
		CreatedAt:      entry.CreatedAt,
	}, nil
}

// pickHandle явно указанный хэндл или первый подключенный
func (uc *UseCase) pickHandle(ctx context.Context, requested *int64) (int64, error) {
	if requested != nil {
		return *requested, nil
	}

	handles, err := uc.transport.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list transports: %v", ErrInternal, err)
	}
	for _, h := range handles {
		if h.Status == domain.TransportConnected {
			return h.ID, nil
		}
	}

	uc.logger.Warn("SendManualMessage: no connected transport handle")
	return 0, ErrNoConnectedTransport
}
