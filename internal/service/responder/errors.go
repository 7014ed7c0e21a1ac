package responder

import "errors"

var (
	// ErrQueueFull очередь автоответов переполнена, задача отброшена
	ErrQueueFull = errors.New("responder: queue is full")

	// ErrStopped автоответчик остановлен
	ErrStopped = errors.New("responder: stopped")
)
