package whatsapp

import (
	"context"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/service/transport"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Driver открывает подключения WhatsApp через whatsmeow
// Ключи устройств лежат в sqlite файле и переживают рестарт процесса.
type Driver struct {
	container *sqlstore.Container
	waLog     waLog.Logger
	printQR   bool
	logger    Logger
}

// NewDriver открывает хранилище устройств и применяет его миграции
func NewDriver(ctx context.Context, storePath string, printQR bool, wl waLog.Logger, logger Logger) (*Driver, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", storePath)

	container, err := sqlstore.New(ctx, "sqlite3", dsn, wl.Sub("Database"))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStore, storePath, err)
	}

	return &Driver{
		container: container,
		waLog:     wl,
		printQR:   printQR,
		logger:    logger,
	}, nil
}

// Open создает клиента whatsmeow для хэндла
// Автопереподключение whatsmeow выключено: политикой повторов владеет менеджер транспорта.
func (d *Driver) Open(ctx context.Context, handle domain.TransportHandle, onEvent func(transport.Event)) (transport.Conn, error) {
	device, err := d.device(ctx, handle)
	if err != nil {
		return nil, err
	}

	client := whatsmeow.NewClient(device, d.waLog.Sub("Client/"+handle.Name))
	client.EnableAutoReconnect = false

	c := newConn(client, handle, onEvent, d.printQR, d.logger)
	client.AddEventHandler(c.handleEvent)

	return c, nil
}

// device находит привязанное устройство хэндла или готовит новое для привязки
func (d *Driver) device(ctx context.Context, handle domain.TransportHandle) (*store.Device, error) {
	if handle.DeviceJID != nil {
		jid, err := types.ParseJID(*handle.DeviceJID)
		if err != nil {
			d.logger.Warn("Open: handle id=%d has invalid device jid=%s: %v", handle.ID, *handle.DeviceJID, err)
		} else {
			device, err := d.container.GetDevice(ctx, jid)
			if err != nil {
				return nil, fmt.Errorf("%w: get device %s: %v", ErrStore, jid, err)
			}
			if device != nil {
				return device, nil
			}
			d.logger.Warn("Open: device jid=%s of handle id=%d is gone, pairing anew", jid, handle.ID)
		}
	}

	return d.container.NewDevice(), nil
}
