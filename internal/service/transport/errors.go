package transport

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrHandleNotFound хэндл не найден
	ErrHandleNotFound = fmt.Errorf("transport handle %w", domain.ErrNotFound)

	// ErrHandleExists хэндл с таким именем уже есть
	ErrHandleExists = errors.New("transport handle already exists")

	// ErrNotConnected отправка через неподключенный хэндл
	ErrNotConnected = fmt.Errorf("transport handle is not connected: %w", domain.ErrTransientTransport)

	// ErrManagerClosed менеджер остановлен
	ErrManagerClosed = errors.New("transport manager is shut down")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("transport.service: internal error")
)
