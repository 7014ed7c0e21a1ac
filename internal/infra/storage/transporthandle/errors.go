package transporthandle

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrHandleNotFound возвращается, когда хэндл не найден
	ErrHandleNotFound = fmt.Errorf("transporthandle.repository: handle %w", domain.ErrNotFound)

	// ErrDuplicateName возвращается при попытке создать хэндл с занятым именем
	ErrDuplicateName = errors.New("transporthandle.repository: handle name already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("transporthandle.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("transporthandle.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("transporthandle.repository: failed to scan row")
)
