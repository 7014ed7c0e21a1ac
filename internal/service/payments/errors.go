package payments

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrLinkNotFound возвращается, когда платёжная ссылка не найдена
	ErrLinkNotFound = fmt.Errorf("payment link %w", domain.ErrNotFound)

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("booking %w", domain.ErrNotFound)

	// ErrSessionNotFound возвращается, когда сессия не найдена
	ErrSessionNotFound = fmt.Errorf("session %w", domain.ErrNotFound)

	// ErrBookingCancelled нельзя выставить или подтвердить оплату отменённого бронирования
	ErrBookingCancelled = errors.New("booking is cancelled")

	// ErrLinkExpired срок действия ссылки истёк
	ErrLinkExpired = errors.New("payment link expired")

	// ErrAlreadyVerified оплата по ссылке уже подтверждена
	ErrAlreadyVerified = errors.New("payment link already verified")

	// ErrPaymentsUnavailable платёжный шлюз не настроен
	ErrPaymentsUnavailable = fmt.Errorf("payments: %w", domain.ErrCapabilityUnavailable)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("payments.service: internal error")
)
