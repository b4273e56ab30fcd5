// Package service содержит планировщик циклов согласования.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CycleScheduler запускает циклы согласования по расписанию. Каждый
// пользователь с активным музыкальным запросом обрабатывается в своей
// горутине, медленный календарь одного не задерживает остальных.
type CycleScheduler struct {
	reconciler *Reconciler
	cronExpr   string
	timeout    time.Duration
	cron       *cron.Cron
	logger     *zap.Logger
	mu         sync.Mutex
	running    bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewCycleScheduler создает новый планировщик циклов
func NewCycleScheduler(reconciler *Reconciler, cronExpr string, timeout time.Duration, logger *zap.Logger) *CycleScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &CycleScheduler{
		reconciler: reconciler,
		cronExpr:   cronExpr,
		timeout:    timeout,
		cron:       cron.New(cron.WithLocation(time.UTC)),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start запускает планировщик
func (s *CycleScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("cycle scheduler is already running")
	}

	if _, err := s.cron.AddFunc(s.cronExpr, s.runCycle); err != nil {
		return fmt.Errorf("failed to schedule reconciliation cycle: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("Cycle scheduler started",
		zap.String("cron_expression", s.cronExpr),
		zap.Duration("cycle_timeout", s.timeout))

	return nil
}

// Stop останавливает планировщик
func (s *CycleScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.cron.Stop()
	s.running = false

	s.logger.Info("Cycle scheduler stopped")
}

// RunNow запускает внеочередной цикл согласования
func (s *CycleScheduler) RunNow() {
	s.runCycle()
}

// runCycle выполняет один цикл согласования для всех активных пользователей
func (s *CycleScheduler) runCycle() {
	userIDs, err := s.reconciler.users.GetActiveMusicRequestUserIDs()
	if err != nil {
		s.logger.Error("Failed to load active users for cycle", zap.Error(err))
		return
	}

	if len(userIDs) == 0 {
		s.logger.Debug("No active music requests, cycle skipped")
		return
	}

	s.logger.Info("Reconciliation cycle started", zap.Int("users", len(userIDs)))

	var wg sync.WaitGroup
	for _, userID := range userIDs {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
			defer cancel()

			if err := s.reconciler.Reconcile(ctx, userID); err != nil {
				s.logger.Error("Reconciliation failed for user",
					zap.Int("user_id", userID),
					zap.Error(err))
			}
		}(userID)
	}
	wg.Wait()

	s.logger.Info("Reconciliation cycle finished", zap.Int("users", len(userIDs)))
}
