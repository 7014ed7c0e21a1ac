package whatsapp

import (
	"errors"
	"fmt"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

var (
	// ErrStore ошибка хранилища ключей устройств
	ErrStore = errors.New("whatsapp driver: device store error")

	// ErrInvalidRecipient адрес получателя не разбирается
	ErrInvalidRecipient = errors.New("whatsapp driver: invalid recipient")

	// ErrNotConnected сокет не подключен
	ErrNotConnected = fmt.Errorf("whatsapp driver: not connected: %w", domain.ErrTransientTransport)

	// ErrSendFailed сообщение не отправлено
	ErrSendFailed = fmt.Errorf("whatsapp driver: send failed: %w", domain.ErrTransientTransport)
)
