package get_transcript

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	clientRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/client"
)

// UseCase чтение переписки с клиентом
type UseCase struct {
	clientRepo     ClientRepository
	transcriptRepo TranscriptRepository
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(clientRepo ClientRepository, transcriptRepo TranscriptRepository, logger Logger) *UseCase {
	return &UseCase{
		clientRepo:     clientRepo,
		transcriptRepo: transcriptRepo,
		logger:         logger,
	}
}

// Execute возвращает переписку по телефону
// Если клиента ещё нет, переписка пустая
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	phone, err := domain.NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = domain.DefaultSessionListLimit
	}
	if limit > domain.MaxListLimit {
		limit = domain.MaxListLimit
	}

	resp := &Response{Phone: phone, Entries: []Entry{}}

	client, err := uc.clientRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, clientRepo.ErrClientNotFound) {
			return resp, nil
		}
		uc.logger.Error("GetTranscript: failed to get client for phone=%s: %v", phone, err)
		return nil, fmt.Errorf("%w: get client: %v", ErrInternal, err)
	}
	resp.ClientID = &client.ID

	entries, err := uc.transcriptRepo.ListByClient(ctx, client.ID, limit, req.Offset)
	if err != nil {
		uc.logger.Error("GetTranscript: failed to list transcript for client id=%d: %v", client.ID, err)
		return nil, fmt.Errorf("%w: list transcript: %v", ErrInternal, err)
	}
	resp.Entries = fromDomainEntries(entries)

	return resp, nil
}
