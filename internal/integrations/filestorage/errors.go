package filestorage

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrTooLarge файл больше допустимого размера
	ErrTooLarge = fmt.Errorf("file is too large: %w", domain.ErrValidation)

	// ErrUnsupportedType расширение файла не поддерживается
	ErrUnsupportedType = fmt.Errorf("unsupported file type: %w", domain.ErrValidation)

	// ErrEmpty пустой файл
	ErrEmpty = fmt.Errorf("file is empty: %w", domain.ErrValidation)

	// ErrInternal ошибка записи на диск
	ErrInternal = errors.New("filestorage: internal error")
)
