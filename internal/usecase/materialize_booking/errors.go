package materialize_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrSessionNotFound возвращается, когда сессии для телефона нет
	ErrSessionNotFound = fmt.Errorf("materialize_booking: session %w", domain.ErrNotFound)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("materialize_booking: internal error")
)
