package sessions

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrSessionNotFound возвращается, когда сессии для номера нет
	ErrSessionNotFound = fmt.Errorf("session %w", domain.ErrNotFound)

	// ErrInvalidTransition возвращается при попытке вернуть сессию на предыдущую стадию
	ErrInvalidTransition = fmt.Errorf("sessions.service: %w", domain.ErrInvalidTransition)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("sessions.service: internal error")
)
