// Package jobs периодические задачи обслуживания: истечение ссылок на оплату
// и снятие просроченных блокировок автоответов.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Job одна периодическая задача, возвращает число обработанных записей
type Job func(ctx context.Context) (int64, error)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// ErrInvalidSpec некорректное расписание задачи
var ErrInvalidSpec = errors.New("jobs: invalid schedule")

// секунды в расписании необязательны: "@every 5m", "0 */5 * * * *", "*/5 * * * *"
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler планировщик задач обслуживания
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  Logger
}

// NewScheduler создает планировщик в часовом поясе timezone
// timeout ограничивает один запуск задачи
func NewScheduler(timezone string, timeout time.Duration, logger Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("jobs: unknown timezone %q: %w", timezone, err)
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Register добавляет задачу, пустое расписание отключает её
func (s *Scheduler) Register(name, spec string, job Job) error {
	if spec == "" {
		s.logger.Info("Scheduler: job %s disabled", name)
		return nil
	}

	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidSpec, name, spec, err)
	}

	s.logger.Info("Scheduler: job %s registered, spec=%q", name, spec)
	return nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения запущенных задач
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs: running jobs not finished: %w", ctx.Err())
	}
}

// run один запуск задачи, паника не роняет планировщик
func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduler: job %s panicked: %v", name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := job(ctx)
	if err != nil {
		s.logger.Error("Scheduler: job %s failed after %s: %v", name, time.Since(start), err)
		return
	}
	if n > 0 {
		s.logger.Info("Scheduler: job %s processed %d records in %s", name, n, time.Since(start))
	}
}
