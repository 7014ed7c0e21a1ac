package handle_inbound

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("handle_inbound: internal error")
)
