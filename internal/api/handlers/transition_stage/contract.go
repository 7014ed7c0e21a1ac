package transition_stage

import (
	"context"

	"github.com/m04kA/GlampingBackoffice/internal/service/sessions/models"
)

type SessionService interface {
	TransitionStage(ctx context.Context, rawPhone string, req *models.TransitionStageRequest) (*models.SessionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
