// Package worker содержит исполнителей фоновых задач генерации.
package worker

import (
	"context"
	"fmt"

	"runmix/internal/model"
	"runmix/internal/queue"
	"runmix/internal/service"

	"go.uber.org/zap"
)

// ImageGenerator определяет интерфейс генерации обложки по промпту
type ImageGenerator interface {
	GenerateCoverImage(ctx context.Context, prompt string) (string, error)
}

// CoverGenerator выполняет задачи генерации обложки плейлиста
type CoverGenerator struct {
	playlists model.PlaylistRepository
	lifecycle *service.LifecycleService
	images    ImageGenerator
	notifier  Notifier
	logger    *zap.Logger
}

// NewCoverGenerator создает новый генератор обложек
func NewCoverGenerator(
	playlists model.PlaylistRepository,
	lifecycle *service.LifecycleService,
	images ImageGenerator,
	notifier Notifier,
	logger *zap.Logger,
) *CoverGenerator {
	return &CoverGenerator{
		playlists: playlists,
		lifecycle: lifecycle,
		images:    images,
		notifier:  notifier,
		logger:    logger,
	}
}

// Execute генерирует обложку плейлиста по сохраненному промпту
func (g *CoverGenerator) Execute(ctx context.Context, task queue.Task) error {
	playlist, err := g.playlists.GetByID(task.PlaylistID)
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}
	if playlist == nil {
		g.logger.Warn("Playlist for cover task no longer exists",
			zap.Int("playlist_id", task.PlaylistID))
		return nil
	}
	if playlist.Status != model.StatusGeneratingCover {
		g.logger.Debug("Playlist is not in generating_cover, skipping task",
			zap.Int("playlist_id", playlist.ID),
			zap.String("status", playlist.Status.String()))
		return nil
	}

	coverURL, err := g.images.GenerateCoverImage(ctx, playlist.CoverPrompt)
	if err != nil {
		if g.notifier != nil {
			g.notifier.NotifyFailure(fmt.Sprintf("Cover generation failed for %q (id %d): %v",
				playlist.WorkoutName, playlist.ID, err))
		}
		return err
	}

	return g.lifecycle.CompleteCover(playlist.ID, coverURL)
}
