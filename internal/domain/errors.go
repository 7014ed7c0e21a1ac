package domain

import (
	"errors"
	"strings"
)

// Таксономия ошибок ядра. Ошибки слоёв оборачивают эти значения,
// поэтому errors.Is работает как для ошибки слоя, так и для категории.
var (
	// ErrValidation базовая ошибка валидации, см. ValidationError
	ErrValidation = errors.New("validation failed")

	// ErrNotFound запись не найдена по ключу
	ErrNotFound = errors.New("not found")

	// ErrTransientTransport временная ошибка транспорта (обрыв соединения, ошибка отправки)
	ErrTransientTransport = errors.New("transient transport error")

	// ErrCapabilityUnavailable внешняя возможность недоступна (генерация текста, платёжный шлюз)
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrInvalidTransition недопустимый переход стадии сессии
	ErrInvalidTransition = errors.New("invalid stage transition")
)

// ValidationError ошибка валидации со списком проблемных полей
type ValidationError struct {
	Fields []string
	Reason string
}

// NewValidationError создает ошибку валидации
func NewValidationError(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Reason
	}
	return "validation failed: " + e.Reason + ": " + strings.Join(e.Fields, ", ")
}

// Is позволяет проверять errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AsValidationError достает ValidationError из цепочки
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
