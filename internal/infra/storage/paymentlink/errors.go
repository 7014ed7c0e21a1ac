package paymentlink

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrLinkNotFound возвращается, когда платёжная ссылка не найдена
	ErrLinkNotFound = fmt.Errorf("paymentlink.repository: payment link %w", domain.ErrNotFound)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("paymentlink.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("paymentlink.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("paymentlink.repository: failed to scan row")
)
