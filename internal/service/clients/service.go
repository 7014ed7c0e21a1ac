package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	clientRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/client"
)

// findOrCreateTimeout предел общего запроса к БД, разделяемого вызывающими
const findOrCreateTimeout = 10 * time.Second

// Service находит или создает клиентов по телефону
//
// Уникальность телефона гарантирует индекс в БД, а singleflight схлопывает
// параллельные запросы по одному номеру внутри процесса в один запрос к БД.
type Service struct {
	clientRepo ClientRepository
	group      singleflight.Group
	logger     Logger
}

// NewService создает новый экземпляр сервиса клиентов
func NewService(clientRepo ClientRepository, logger Logger) *Service {
	return &Service{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

type findResult struct {
	client  *domain.Client
	created bool
}

// FindOrCreate возвращает клиента с телефоном seed.Phone, создавая его при первом обращении
// Пустой email заменяется адресом-заглушкой, пустой источник считается ручным
func (s *Service) FindOrCreate(ctx context.Context, seed domain.Client) (*domain.Client, error) {
	phone, err := domain.NormalizePhone(seed.Phone)
	if err != nil {
		return nil, err
	}
	seed.Phone = phone

	if seed.Name == "" {
		seed.Name = phone
	}
	if seed.Email == "" {
		seed.Email = domain.PlaceholderEmail(phone)
	}
	if seed.Source == "" {
		seed.Source = domain.ClientSourceManual
	}

	ch := s.group.DoChan(phone, func() (interface{}, error) {
		// общий запрос не зависит от отмены того, кто пришел первым
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), findOrCreateTimeout)
		defer cancel()

		c, created, err := s.clientRepo.FindOrCreate(callCtx, &seed)
		if err != nil {
			return nil, err
		}
		return findResult{client: c, created: created}, nil
	})

	var out singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out = <-ch:
	}
	if out.Err != nil {
		s.logger.Error("FindOrCreate: repository error for phone=%s: %v", phone, out.Err)
		return nil, fmt.Errorf("%w: FindOrCreate - repository error: %v", ErrInternal, out.Err)
	}

	res := out.Val.(findResult)
	if res.created && !out.Shared {
		s.logger.Info("FindOrCreate: created client id=%d for phone=%s, source=%s", res.client.ID, phone, res.client.Source)
	}

	// каждому вызывающему своя копия
	c := *res.client
	return &c, nil
}

// GetByPhone возвращает клиента по телефону
func (s *Service) GetByPhone(ctx context.Context, rawPhone string) (*domain.Client, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	c, err := s.clientRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, clientRepo.ErrClientNotFound) {
			return nil, ErrClientNotFound
		}
		s.logger.Error("GetByPhone: repository error for phone=%s: %v", phone, err)
		return nil, fmt.Errorf("%w: GetByPhone - repository error: %v", ErrInternal, err)
	}
	return c, nil
}
