package materialize_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	sessionRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/session"
)

// UseCase use case для создания бронирования из накопленной сессии
type UseCase struct {
	sessionRepo SessionRepository
	bookingRepo BookingRepository
	clientRepo  ClientRepository
	txManager   TransactionManager
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	sessionRepo SessionRepository,
	bookingRepo BookingRepository,
	clientRepo ClientRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		sessionRepo: sessionRepo,
		bookingRepo: bookingRepo,
		clientRepo:  clientRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute создает бронирование из сессии
// Повторный вызов для сессии с бронированием возвращает существующее бронирование
// Все изменения в одной транзакции: при ошибке не остается ни клиента, ни бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Нормализуем телефон
	phone, err := domain.NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("MaterializeBooking: phone=%s", phone)

	var result *Response

	// 2. Все операции с БД в одной транзакции, строка сессии заблокирована
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2.1. Сессия
		session, err := uc.sessionRepo.GetByPhone(txCtx, phone)
		if err != nil {
			if errors.Is(err, sessionRepo.ErrSessionNotFound) {
				uc.logger.Warn("MaterializeBooking: session for phone=%s not found", phone)
				return ErrSessionNotFound
			}
			return fmt.Errorf("%w: failed to get session: %v", ErrInternal, err)
		}

		// 2.2. Уже материализована: возвращаем существующее бронирование
		if session.BookingID != nil {
			booking, err := uc.bookingRepo.GetByID(txCtx, *session.BookingID)
			if err != nil {
				return fmt.Errorf("%w: failed to get linked booking id=%d: %v", ErrInternal, *session.BookingID, err)
			}
			uc.logger.Info("MaterializeBooking: session id=%d already has booking id=%d", session.ID, booking.ID)
			result = &Response{
				Booking:   booking,
				SessionID: session.ID,
				ClientID:  booking.ClientID,
				Created:   false,
			}
			return nil
		}

		// 2.3. Валидация накопленных полей
		if err := validateSession(session); err != nil {
			uc.logger.Warn("MaterializeBooking: session id=%d validation failed: %v", session.ID, err)
			return err
		}

		// 2.4. Клиент: переиспользуем привязанного или находим по телефону
		client, err := uc.resolveClient(txCtx, session)
		if err != nil {
			return err
		}

		// 2.5. Создаем бронирование в статусе pending
		booking := &domain.Booking{
			ClientID:          client.ID,
			SessionID:         &session.ID,
			AccommodationType: *session.AccommodationType,
			CheckIn:           *session.CheckIn,
			CheckOut:          *session.CheckOut,
			GuestCount:        domain.DefaultGuestCount,
			ContactName:       *session.ContactName,
			ContactEmail:      client.Email,
			ContactPhone:      phone,
			Status:            domain.StatusPending,
		}
		if session.GuestCount != nil {
			booking.GuestCount = *session.GuestCount
		}
		if session.TotalPrice != nil {
			booking.TotalPrice = *session.TotalPrice
		}
		if session.Email != nil && *session.Email != "" {
			booking.ContactEmail = *session.Email
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("MaterializeBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 2.6. Связываем сессию с клиентом и бронированием, стадия только вперёд
		stage := session.Stage.Advance(domain.StageBookingConfirmed)
		if _, err := uc.sessionRepo.LinkBooking(txCtx, session.ID, client.ID, created.ID, stage); err != nil {
			uc.logger.Error("MaterializeBooking: failed to link booking id=%d to session id=%d: %v", created.ID, session.ID, err)
			return fmt.Errorf("%w: failed to link booking: %v", ErrInternal, err)
		}

		result = &Response{
			Booking:   created,
			SessionID: session.ID,
			ClientID:  client.ID,
			Created:   true,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	if result.Created {
		uc.logger.Info("MaterializeBooking: created booking id=%d for session id=%d", result.Booking.ID, result.SessionID)
	}
	return result, nil
}

// resolveClient возвращает клиента сессии, создавая его при необходимости
func (uc *UseCase) resolveClient(ctx context.Context, session *domain.Session) (*domain.Client, error) {
	if session.ClientID != nil {
		client, err := uc.clientRepo.GetByID(ctx, *session.ClientID)
		if err == nil {
			return client, nil
		}
		// ссылка на клиента слабая до материализации
		uc.logger.Warn("MaterializeBooking: linked client id=%d not loaded: %v", *session.ClientID, err)
	}

	seed := &domain.Client{
		Name:   *session.ContactName,
		Phone:  session.PhoneNumber,
		Email:  domain.PlaceholderEmail(session.PhoneNumber),
		Source: domain.ClientSourceMessaging,
	}
	if session.Email != nil && *session.Email != "" {
		seed.Email = *session.Email
	}

	client, created, err := uc.clientRepo.FindOrCreate(ctx, seed)
	if err != nil {
		uc.logger.Error("MaterializeBooking: failed to find or create client for phone=%s: %v", session.PhoneNumber, err)
		return nil, fmt.Errorf("%w: failed to resolve client: %v", ErrInternal, err)
	}
	if created {
		uc.logger.Info("MaterializeBooking: created client id=%d for phone=%s", client.ID, session.PhoneNumber)
	}
	return client, nil
}
