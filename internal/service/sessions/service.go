package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	sessionRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/session"
	"github.com/m04kA/GlampingBackoffice/internal/service/sessions/models"
)

// Service хранилище состояния диалогов, одна сессия на номер телефона
type Service struct {
	sessionRepo  SessionRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса сессий
func NewService(
	sessionRepo SessionRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		sessionRepo:  sessionRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Upsert создает сессию или дописывает непустые поля в существующую
// Пустые поля запроса никогда не затирают сохранённые значения
func (s *Service) Upsert(ctx context.Context, rawPhone string, req *models.UpsertSessionRequest) (*models.SessionResponse, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		s.logger.Warn("Upsert: invalid phone=%q: %v", rawPhone, err)
		return nil, err
	}

	patch, err := req.ToDomainPatch()
	if err != nil {
		s.logger.Warn("Upsert: invalid fields for phone=%s: %v", phone, err)
		return nil, err
	}

	session, err := s.sessionRepo.Upsert(ctx, phone, patch)
	if err != nil {
		s.logger.Error("Upsert: repository error for phone=%s: %v", phone, err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upsert: session id=%d saved for phone=%s, stage=%s", session.ID, phone, session.Stage)
	return models.FromDomainSession(session), nil
}

// Get возвращает сессию по номеру телефона
func (s *Service) Get(ctx context.Context, rawPhone string) (*models.SessionResponse, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, s.mapRepoError("Get", phone, err)
	}

	return models.FromDomainSession(session), nil
}

// TransitionStage переводит сессию на новую стадию и отмечает время взаимодействия
// Разрешены только переходы вперёд по воронке, повтор текущей стадии допустим
func (s *Service) TransitionStage(ctx context.Context, rawPhone string, req *models.TransitionStageRequest) (*models.SessionResponse, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	stage, err := domain.ParseStage(req.Stage)
	if err != nil {
		s.logger.Warn("TransitionStage: unknown stage=%q for phone=%s", req.Stage, phone)
		return nil, err
	}

	var patch domain.SessionPatch
	if req.Fields != nil {
		patch, err = req.Fields.ToDomainPatch()
		if err != nil {
			s.logger.Warn("TransitionStage: invalid fields for phone=%s: %v", phone, err)
			return nil, err
		}
	}

	var updated *domain.Session
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.sessionRepo.GetByPhone(ctx, phone)
		if err != nil {
			return s.mapRepoError("TransitionStage", phone, err)
		}

		if !current.Stage.CanTransitionTo(stage) {
			s.logger.Warn("TransitionStage: rejected %s -> %s for phone=%s", current.Stage, stage, phone)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Stage, stage)
		}

		updated, err = s.sessionRepo.UpdateStage(ctx, phone, stage, patch, s.timeProvider.Now())
		if err != nil {
			return s.mapRepoError("TransitionStage", phone, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("TransitionStage: session id=%d moved to stage=%s", updated.ID, updated.Stage)
	return models.FromDomainSession(updated), nil
}

// Block приостанавливает автоответы для номера, until == nil означает бессрочно
func (s *Service) Block(ctx context.Context, rawPhone string, req *models.BlockRequest) (*models.SessionResponse, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	if req.Until != nil && !req.Until.After(s.timeProvider.Now()) {
		return nil, domain.NewValidationError("block expiry must be in the future", "until")
	}

	session, err := s.sessionRepo.SetBlocked(ctx, phone, true, req.Until)
	if err != nil {
		return nil, s.mapRepoError("Block", phone, err)
	}

	s.logger.Info("Block: session id=%d blocked, until=%v", session.ID, req.Until)
	return models.FromDomainSession(session), nil
}

// Unblock снимает блокировку автоответов
func (s *Service) Unblock(ctx context.Context, rawPhone string) (*models.SessionResponse, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.SetBlocked(ctx, phone, false, nil)
	if err != nil {
		return nil, s.mapRepoError("Unblock", phone, err)
	}

	s.logger.Info("Unblock: session id=%d unblocked", session.ID)
	return models.FromDomainSession(session), nil
}

// Touch фиксирует входящий контакт: создает сессию при первом сообщении,
// привязывает клиента и обновляет время последнего взаимодействия
func (s *Service) Touch(ctx context.Context, phone string, clientID int64, at time.Time) error {
	_, err := s.sessionRepo.Upsert(ctx, phone, domain.SessionPatch{
		ClientID:          &clientID,
		LastInteractionAt: &at,
	})
	if err != nil {
		return fmt.Errorf("%w: Touch - repository error: %v", ErrInternal, err)
	}
	return nil
}

// List возвращает сессии с фильтрацией по стадии и блокировке
func (s *Service) List(ctx context.Context, req *models.ListSessionsRequest) (*models.SessionListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSessionList(sessions), nil
}

// ReleaseExpiredBlocks снимает блокировки с истёкшим сроком
func (s *Service) ReleaseExpiredBlocks(ctx context.Context) (int64, error) {
	n, err := s.sessionRepo.ReleaseExpiredBlocks(ctx, s.timeProvider.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseExpiredBlocks - repository error: %v", ErrInternal, err)
	}
	if n > 0 {
		s.logger.Info("ReleaseExpiredBlocks: released %d sessions", n)
	}
	return n, nil
}

func (s *Service) mapRepoError(op, phone string, err error) error {
	if errors.Is(err, sessionRepo.ErrSessionNotFound) {
		s.logger.Warn("%s: session for phone=%s not found", op, phone)
		return ErrSessionNotFound
	}
	s.logger.Error("%s: repository error for phone=%s: %v", op, phone, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
