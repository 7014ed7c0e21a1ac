package send_manual_message

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrNoConnectedTransport нет подключенного хэндла для отправки
	ErrNoConnectedTransport = fmt.Errorf("send_manual_message: no connected transport: %w", domain.ErrCapabilityUnavailable)

	// ErrSendFailed сообщение записано со статусом failed
	ErrSendFailed = fmt.Errorf("send_manual_message: %w", domain.ErrTransientTransport)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("send_manual_message: internal error")
)
