package unblock_session

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/service/sessions/models"
)

type SessionService interface {
	Unblock(ctx context.Context, rawPhone string) (*models.SessionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
