package responder

import "time"

// Task задача на автоответ по одному входящему сообщению
type Task struct {
	Text         string
	ClientID     int64
	Phone        string
	ReplyAddress string // адрес чата в транспорте
	HandleID     int64
}

// Config параметры автоответчика
type Config struct {
	SystemPrompt string
	MaxTokens    int
	Workers      int
	QueueSize    int
	SendAttempts int
	RetryDelay   time.Duration // задержка перед второй попыткой, далее удваивается
	Timeout      time.Duration // на генерацию и отправку одной задачи
}

// Исходы обработки задачи (метка метрики)
const (
	OutcomeSent             = "sent"
	OutcomeSkippedBlocked   = "skipped_blocked"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeSendFailed       = "send_failed"
	OutcomeDropped          = "dropped"
)
