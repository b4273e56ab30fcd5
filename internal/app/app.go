// Package app содержит основную логику приложения.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"runmix/internal/config"
	"runmix/internal/health"
	"runmix/internal/queue"
	"runmix/internal/service"
	"runmix/internal/storage"

	"go.uber.org/zap"
)

// App представляет сервис согласования плейлистов
type App struct {
	config     *config.Config
	logger     *zap.Logger
	db         *storage.Postgres
	dispatcher *queue.Dispatcher
	scheduler  *service.CycleScheduler
	health     *health.Server
	playlists  *service.PlaylistService
	wg         sync.WaitGroup
}

// NewApp создает новый экземпляр приложения со всеми зависимостями
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	factory := NewComponentFactory(cfg, logger)
	return factory.CreateApp()
}

// Playlists возвращает сервис ручных операций над плейлистами
func (a *App) Playlists() *service.PlaylistService {
	return a.playlists
}

// Start запускает приложение и блокируется до отмены контекста
func (a *App) Start(ctx context.Context) error {
	a.logger.Info("Starting application")

	migrateCtx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	if err := a.db.Migrate(migrateCtx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := a.dispatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}

	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start cycle scheduler: %w", err)
	}

	if a.health != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.health.Start(); err != nil {
				if err.Error() == "http: Server closed" {
					a.logger.Info("Health check server stopped normally")
				} else {
					a.logger.Error("Health check server failed", zap.Error(err))
				}
			}
		}()
	}

	a.logger.Info("Application started successfully")

	<-ctx.Done()
	a.logger.Info("Shutdown signal received")
	return a.Stop()
}

// Stop gracefully останавливает приложение
func (a *App) Stop() error {
	a.logger.Info("Stopping application gracefully")

	a.scheduler.Stop()
	a.dispatcher.Stop()

	if a.health != nil {
		if err := a.health.Stop(); err != nil {
			a.logger.Error("Failed to stop health check server", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.wg.Wait()
	}()

	select {
	case <-done:
		a.logger.Info("All goroutines stopped successfully")
	case <-shutdownCtx.Done():
		a.logger.Warn("Graceful shutdown timeout exceeded, forcing stop")
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database connection", zap.Error(err))
	}

	a.logger.Info("Application stopped successfully")
	return nil
}
