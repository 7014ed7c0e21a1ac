package get_transcript

import (
	"context"

	uc "github.com/m04kA/GlampingBackoffice/internal/usecase/get_transcript"
)

type UseCase interface {
	Execute(ctx context.Context, req *uc.Request) (*uc.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
