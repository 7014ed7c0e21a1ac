package payments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	bookingRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/booking"
	linkRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/paymentlink"
	sessionRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/session"
	"github.com/m04kA/GlampingBackoffice/internal/service/payments/models"
)

// Config параметры выставления ссылок
type Config struct {
	Currency    string
	TTL         time.Duration
	URLTemplate string // {reference}, {amount}, {currency}
	NodeID      int64  // узел snowflake, уникален для каждого экземпляра сервиса
}

// Service выставление ссылок на оплату и ручное подтверждение оплаты
type Service struct {
	cfg          Config
	bookingRepo  BookingRepository
	linkRepo     PaymentLinkRepository
	sessionRepo  SessionRepository
	proofs       ProofStorage
	txManager    TransactionManager
	node         *snowflake.Node
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса оплат
func NewService(
	cfg Config,
	bookingRepo BookingRepository,
	linkRepo PaymentLinkRepository,
	sessionRepo SessionRepository,
	proofs ProofStorage,
	txManager TransactionManager,
	logger Logger,
) (*Service, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("payments: snowflake node %d: %w", cfg.NodeID, err)
	}
	if cfg.Currency == "" {
		cfg.Currency = domain.DefaultCurrency
	}
	if cfg.TTL <= 0 {
		cfg.TTL = domain.DefaultPaymentLinkTTL
	}

	return &Service{
		cfg:          cfg,
		bookingRepo:  bookingRepo,
		linkRepo:     linkRepo,
		sessionRepo:  sessionRepo,
		proofs:       proofs,
		txManager:    txManager,
		node:         node,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}, nil
}

// Issue выставляет ссылку на оплату бронирования
// Сессия переходит в payment_pending, если она ещё не дальше по воронке
func (s *Service) Issue(ctx context.Context, bookingID int64, req *models.IssueRequest) (*models.PaymentLinkResponse, error) {
	s.logger.Info("Issue: issuing payment link for booking id=%d, amount=%.2f", bookingID, req.Amount)

	// 1. Валидация входных данных
	if req.Amount <= 0 {
		return nil, domain.NewValidationError("amount must be positive", "amount")
	}
	currency := s.cfg.Currency
	if req.Currency != nil && *req.Currency != "" {
		currency = strings.ToUpper(*req.Currency)
	}

	// 2. Без шаблона ссылки платёжная возможность недоступна
	if s.cfg.URLTemplate == "" {
		s.logger.Error("Issue: payment url template is not configured")
		return nil, ErrPaymentsUnavailable
	}

	var created *domain.PaymentLink
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// 3. Бронирование существует и не отменено
		booking, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Issue - get booking: %v", ErrInternal, err)
		}
		if booking.IsCancelled() {
			return ErrBookingCancelled
		}

		// 4. Сессия из запроса или из бронирования
		sessionID := booking.SessionID
		if req.SessionID != nil {
			sessionID = req.SessionID
		}
		if sessionID == nil {
			return domain.NewValidationError("booking has no session, sessionId is required", "sessionId")
		}
		session, err := s.sessionRepo.GetByID(ctx, *sessionID)
		if err != nil {
			if errors.Is(err, sessionRepo.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("%w: Issue - get session: %v", ErrInternal, err)
		}

		// 5. Создаём ссылку
		reference := s.node.Generate().String()
		link := &domain.PaymentLink{
			BookingID:          booking.ID,
			SessionID:          session.ID,
			Reference:          reference,
			Amount:             req.Amount,
			Currency:           currency,
			ExternalPaymentURL: s.renderURL(reference, req.Amount, currency),
			Status:             domain.PaymentPending,
			ExpiresAt:          s.timeProvider.Now().Add(s.cfg.TTL),
		}
		created, err = s.linkRepo.Create(ctx, link)
		if err != nil {
			return fmt.Errorf("%w: Issue - create link: %v", ErrInternal, err)
		}

		// 6. Продвигаем стадию сессии
		return s.advanceSession(ctx, session, domain.StagePaymentPending)
	})
	if err != nil {
		s.logFailure("Issue", err)
		return nil, err
	}

	s.logger.Info("Issue: payment link id=%d reference=%s issued for booking id=%d", created.ID, created.Reference, bookingID)
	return models.FromDomainPaymentLink(created), nil
}

// UploadProof сохраняет файл подтверждения и прикрепляет его к ссылке
func (s *Service) UploadProof(ctx context.Context, linkID int64, filename string, r io.Reader) (*models.PaymentLinkResponse, error) {
	// Проверяем ссылку до записи файла, чтобы не копить мусор на диске
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return nil, s.mapLinkError("UploadProof", linkID, err)
	}
	if err := s.checkOpen(link); err != nil {
		return nil, err
	}

	url, err := s.proofs.Save(ctx, filename, r)
	if err != nil {
		s.logger.Warn("UploadProof: failed to store proof for link id=%d: %v", linkID, err)
		return nil, err
	}

	return s.SubmitProof(ctx, linkID, &models.SubmitProofRequest{ArtifactURL: url})
}

// SubmitProof прикрепляет подтверждение оплаты, статус бронирования не меняется
// Сессия переходит в payment_verification
func (s *Service) SubmitProof(ctx context.Context, linkID int64, req *models.SubmitProofRequest) (*models.PaymentLinkResponse, error) {
	if strings.TrimSpace(req.ArtifactURL) == "" {
		return nil, domain.NewValidationError("proof artifact is required", "artifactUrl")
	}

	var updated *domain.PaymentLink
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		link, err := s.linkRepo.GetByID(ctx, linkID)
		if err != nil {
			return s.mapLinkError("SubmitProof", linkID, err)
		}
		if err := s.checkOpen(link); err != nil {
			return err
		}

		artifact := req.ArtifactURL
		link.ProofArtifactURL = &artifact
		link.Status = domain.PaymentProofSubmitted
		if err := s.linkRepo.Update(ctx, link); err != nil {
			return fmt.Errorf("%w: SubmitProof - update link: %v", ErrInternal, err)
		}

		if err := s.advanceSessionByID(ctx, link.SessionID, domain.StagePaymentVerification); err != nil {
			return err
		}

		updated = link
		return nil
	})
	if err != nil {
		s.logFailure("SubmitProof", err)
		return nil, err
	}

	s.logger.Info("SubmitProof: proof attached to payment link id=%d", linkID)
	return models.FromDomainPaymentLink(updated), nil
}

// Verify подтверждает оплату: ссылка verified, бронирование confirmed,
// сессия payment_confirmed. Повторное подтверждение возвращает ссылку без изменений.
func (s *Service) Verify(ctx context.Context, linkID int64, verifiedBy string) (*models.PaymentLinkResponse, error) {
	if strings.TrimSpace(verifiedBy) == "" {
		return nil, domain.NewValidationError("verifier is required", "verifiedBy")
	}

	var result *domain.PaymentLink
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		link, err := s.linkRepo.GetByID(ctx, linkID)
		if err != nil {
			return s.mapLinkError("Verify", linkID, err)
		}

		if link.Status == domain.PaymentVerified {
			result = link
			return nil
		}
		if link.IsExpired(s.timeProvider.Now()) {
			return ErrLinkExpired
		}

		booking, err := s.bookingRepo.GetByID(ctx, link.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Verify - get booking: %v", ErrInternal, err)
		}
		if booking.IsCancelled() {
			return ErrBookingCancelled
		}

		now := s.timeProvider.Now()
		link.Status = domain.PaymentVerified
		link.VerifiedBy = &verifiedBy
		link.VerifiedAt = &now
		if err := s.linkRepo.Update(ctx, link); err != nil {
			return fmt.Errorf("%w: Verify - update link: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.StatusConfirmed); err != nil {
			return fmt.Errorf("%w: Verify - confirm booking: %v", ErrInternal, err)
		}

		if err := s.advanceSessionByID(ctx, link.SessionID, domain.StagePaymentConfirmed); err != nil {
			return err
		}

		result = link
		return nil
	})
	if err != nil {
		s.logFailure("Verify", err)
		return nil, err
	}

	s.logger.Info("Verify: payment link id=%d verified by %s, booking id=%d confirmed", linkID, verifiedBy, result.BookingID)
	return models.FromDomainPaymentLink(result), nil
}

// Get возвращает ссылку по ID
func (s *Service) Get(ctx context.Context, linkID int64) (*models.PaymentLinkResponse, error) {
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return nil, s.mapLinkError("Get", linkID, err)
	}
	return models.FromDomainPaymentLink(link), nil
}

// ListByBooking возвращает ссылки бронирования, новые первыми
func (s *Service) ListByBooking(ctx context.Context, bookingID int64) (*models.PaymentLinkListResponse, error) {
	links, err := s.linkRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		s.logger.Error("ListByBooking: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: ListByBooking - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainPaymentLinkList(links), nil
}

// ExpireStale помечает просроченные неподтверждённые ссылки как expired
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.linkRepo.ExpireOverdue(ctx, s.timeProvider.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - repository error: %v", ErrInternal, err)
	}
	if n > 0 {
		s.logger.Info("ExpireStale: %d payment links expired", n)
	}
	return n, nil
}

// Вспомогательные методы

func (s *Service) checkOpen(link *domain.PaymentLink) error {
	if link.Status == domain.PaymentVerified {
		return ErrAlreadyVerified
	}
	if link.IsExpired(s.timeProvider.Now()) {
		return ErrLinkExpired
	}
	return nil
}

func (s *Service) advanceSessionByID(ctx context.Context, sessionID int64, target domain.Stage) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("%w: get session: %v", ErrInternal, err)
	}
	return s.advanceSession(ctx, session, target)
}

// advanceSession двигает стадию только вперёд
func (s *Service) advanceSession(ctx context.Context, session *domain.Session, target domain.Stage) error {
	next := session.Stage.Advance(target)
	if next == session.Stage {
		return nil
	}
	if err := s.sessionRepo.SetStageByID(ctx, session.ID, next); err != nil {
		return fmt.Errorf("%w: advance session id=%d to %s: %v", ErrInternal, session.ID, next, err)
	}
	return nil
}

func (s *Service) renderURL(reference string, amount float64, currency string) string {
	return strings.NewReplacer(
		"{reference}", reference,
		"{amount}", strconv.FormatFloat(amount, 'f', 2, 64),
		"{currency}", currency,
	).Replace(s.cfg.URLTemplate)
}

func (s *Service) mapLinkError(op string, linkID int64, err error) error {
	if errors.Is(err, linkRepo.ErrLinkNotFound) {
		s.logger.Warn("%s: payment link id=%d not found", op, linkID)
		return ErrLinkNotFound
	}
	s.logger.Error("%s: repository error for payment link id=%d: %v", op, linkID, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func (s *Service) logFailure(op string, err error) {
	if errors.Is(err, ErrInternal) {
		s.logger.Error("%s: %v", op, err)
		return
	}
	s.logger.Warn("%s: %v", op, err)
}
