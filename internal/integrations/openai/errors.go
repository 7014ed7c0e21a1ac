package openai

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrUnavailable генерация текста недоступна: нет ключа, таймаут, 429 или 5xx
	ErrUnavailable = fmt.Errorf("openai client: %w", domain.ErrCapabilityUnavailable)

	// ErrUnauthorized ключ API отклонён
	ErrUnauthorized = fmt.Errorf("openai client: unauthorized: %w", domain.ErrCapabilityUnavailable)

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("openai client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе API
	ErrInvalidResponse = errors.New("openai client: invalid response")

	// ErrEmptyCompletion модель не вернула текст
	ErrEmptyCompletion = errors.New("openai client: empty completion")
)
