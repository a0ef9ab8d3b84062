package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OutboxRelay отправляет одну пачку событий outbox
type OutboxRelay interface {
	RunOnce(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	relay    OutboxRelay
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(relay OutboxRelay, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Scheduler{
		relay:    relay,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("outbox_interval", s.interval))

	s.wg.Add(1)
	go s.runOutboxTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// runOutboxTask периодически отправляет события outbox
func (s *Scheduler) runOutboxTask(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.drainOutbox(ctx)
		case <-s.stopChan:
			s.logger.Info("Outbox task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Outbox task cancelled")
			return
		}
	}
}

// drainOutbox отправляет пачки, пока outbox не опустеет.
// Ошибка не прерывает задачу: события останутся неотправленными до следующего тика.
func (s *Scheduler) drainOutbox(ctx context.Context) {
	for {
		n, err := s.relay.RunOnce(ctx)
		if err != nil {
			s.logger.Error("Failed to relay outbox", zap.Error(err))
			return
		}
		if n == 0 {
			return
		}

		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}
	}
}
