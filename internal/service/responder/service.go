package responder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

const persistTimeout = 5 * time.Second

// Service автоответчик
//
// Входящий обработчик кладёт задачу в ограниченную очередь и сразу возвращается.
// Диспетчер перекладывает задачи в пул ants, размер пула ограничивает число
// одновременных обращений к генерации текста.
type Service struct {
	cfg          Config
	generator    TextGenerator
	sender       Sender
	transcripts  TranscriptRepository
	sessions     SessionReader
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger

	pool  *ants.Pool
	queue chan Task
	done  chan struct{}

	mu      sync.RWMutex
	stopped bool
}

// NewService создает автоответчик и запускает диспетчер очереди
// metrics может быть nil
func NewService(
	cfg Config,
	generator TextGenerator,
	sender Sender,
	transcripts TranscriptRepository,
	sessions SessionReader,
	metrics MetricsRecorder,
	logger Logger,
) (*Service, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.SendAttempts <= 0 {
		cfg.SendAttempts = 1
	}

	s := &Service{
		cfg:          cfg,
		generator:    generator,
		sender:       sender,
		transcripts:  transcripts,
		sessions:     sessions,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		queue:        make(chan Task, cfg.QueueSize),
		done:         make(chan struct{}),
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithPanicHandler(func(p interface{}) {
		logger.Error("Responder: task panic: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("responder: failed to create pool: %w", err)
	}
	s.pool = pool

	go s.dispatch()
	return s, nil
}

// Enqueue ставит задачу в очередь, не блокируя вызывающего
func (s *Service) Enqueue(task Task) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return ErrStopped
	}

	select {
	case s.queue <- task:
		return nil
	default:
		s.observe(OutcomeDropped)
		s.logger.Warn("Enqueue: queue is full, dropping reply for client=%d", task.ClientID)
		return ErrQueueFull
	}
}

// Stop перестает принимать задачи и дожидается обработки очереди
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.queue)
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-time.After(timeout):
		s.pool.Release()
		return fmt.Errorf("responder: queue not drained in %s", timeout)
	}

	return s.pool.ReleaseTimeout(timeout)
}

func (s *Service) dispatch() {
	defer close(s.done)

	for task := range s.queue {
		task := task
		// пул в блокирующем режиме: ждем свободного воркера
		if err := s.pool.Submit(func() { s.Process(context.Background(), task) }); err != nil {
			s.observe(OutcomeDropped)
			s.logger.Error("Responder: failed to submit task for client=%d: %v", task.ClientID, err)
		}
	}
}

// Process генерирует и отправляет ответ на одно сообщение
// Ошибки не возвращаются: клиент в мессенджере никогда не видит сбоев автоответчика
func (s *Service) Process(ctx context.Context, task Task) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	// 1. Заблокированным сессиям не отвечаем
	if s.isBlocked(ctx, task.Phone) {
		s.observe(OutcomeSkippedBlocked)
		s.logger.Info("Process: session phone=%s is blocked, reply skipped", task.Phone)
		return
	}

	// 2. Генерация ответа, без повторов
	reply, err := s.generator.Complete(ctx, s.cfg.SystemPrompt, task.Text, s.cfg.MaxTokens)
	if err != nil {
		s.observe(OutcomeGenerationFailed)
		s.logger.Warn("Process: text generation failed for client=%d: %v", task.ClientID, err)
		return
	}

	// 3. Отправка с повторами на временных ошибках транспорта
	sendErr := s.sendWithRetry(ctx, task, reply)

	// 4. Исходящая запись в журнал, даже если отправить не удалось
	entry := &domain.TranscriptEntry{
		ClientID:       task.ClientID,
		Source:         domain.MessageSourceTransport,
		Direction:      domain.DirectionToClient,
		Content:        reply,
		DeliveryStatus: domain.DeliverySent,
	}
	if sendErr != nil {
		entry.DeliveryStatus = domain.DeliveryFailed
		s.observe(OutcomeSendFailed)
		s.logger.Error("Process: reply to client=%d not delivered, stored as failed: %v", task.ClientID, sendErr)
	} else {
		s.observe(OutcomeSent)
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if _, err := s.transcripts.Append(persistCtx, entry); err != nil {
		s.logger.Error("Process: failed to append outbound entry for client=%d: %v", task.ClientID, err)
		return
	}

	if sendErr == nil {
		s.logger.Info("Process: reply sent to client=%d via handle=%d", task.ClientID, task.HandleID)
	}
}

func (s *Service) isBlocked(ctx context.Context, phone string) bool {
	if s.sessions == nil || phone == "" {
		return false
	}

	session, err := s.sessions.GetByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("Process: failed to load session phone=%s: %v", phone, err)
		}
		return false
	}
	return session.IsBlocked(s.timeProvider.Now())
}

func (s *Service) sendWithRetry(ctx context.Context, task Task, text string) error {
	delay := s.cfg.RetryDelay

	var err error
	for attempt := 1; attempt <= s.cfg.SendAttempts; attempt++ {
		err = s.sender.Send(ctx, task.HandleID, task.ReplyAddress, text)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTransientTransport) || attempt == s.cfg.SendAttempts {
			break
		}

		s.logger.Warn("Process: send attempt %d/%d to client=%d failed: %v", attempt, s.cfg.SendAttempts, task.ClientID, err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveResponder(outcome)
	}
}
