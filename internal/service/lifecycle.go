// Package service содержит бизнес-логику приложения.
package service

import (
	"fmt"

	"runmix/internal/model"

	"go.uber.org/zap"
)

// LifecycleService фиксирует результаты фоновой генерации в хранилище
type LifecycleService struct {
	playlists model.PlaylistRepository
	tracks    model.TrackRepository
	logger    *zap.Logger
}

// NewLifecycleService создает новый сервис жизненного цикла плейлиста
func NewLifecycleService(playlists model.PlaylistRepository, tracks model.TrackRepository, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		playlists: playlists,
		tracks:    tracks,
		logger:    logger,
	}
}

// CompleteGeneration сохраняет треклист и переводит плейлист в ready.
// Старые треки заменяются целиком, история остается только в Spotify.
func (s *LifecycleService) CompleteGeneration(playlistID int, tracks []*model.Track, coverPrompt string) error {
	if err := s.tracks.DeleteByPlaylistID(playlistID); err != nil {
		return fmt.Errorf("failed to delete previous tracks: %w", err)
	}

	if len(tracks) > 0 {
		if err := s.tracks.CreateMany(tracks); err != nil {
			return fmt.Errorf("failed to save tracks: %w", err)
		}
	}

	if err := s.playlists.MarkReady(playlistID, coverPrompt); err != nil {
		return fmt.Errorf("failed to mark playlist ready: %w", err)
	}

	s.logger.Info("Playlist generation completed",
		zap.Int("playlist_id", playlistID),
		zap.Int("tracks_count", len(tracks)))

	return nil
}

// CompleteCover сохраняет URL обложки и возвращает плейлист в ready
func (s *LifecycleService) CompleteCover(playlistID int, coverURL string) error {
	if err := s.playlists.MarkCoverReady(playlistID, coverURL); err != nil {
		return fmt.Errorf("failed to mark cover ready: %w", err)
	}

	s.logger.Info("Playlist cover generation completed",
		zap.Int("playlist_id", playlistID))

	return nil
}
