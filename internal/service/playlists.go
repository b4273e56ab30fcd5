// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"fmt"

	"runmix/internal/model"
	"runmix/internal/queue"

	"go.uber.org/zap"
)

// MusicService определяет интерфейс операций с плейлистом в музыкальном
// сервисе от имени пользователя
type MusicService interface {
	FollowPlaylist(ctx context.Context, auth *model.Authentication, spotifyID string) error
	UnfollowPlaylist(ctx context.Context, auth *model.Authentication, spotifyID string) error
}

// PlaylistService реализует ручные операции пользователя над плейлистом
type PlaylistService struct {
	playlists  model.PlaylistRepository
	users      model.UserRepository
	dispatcher TaskDispatcher
	music      MusicService
	logger     *zap.Logger
}

// NewPlaylistService создает новый сервис плейлистов
func NewPlaylistService(
	playlists model.PlaylistRepository,
	users model.UserRepository,
	dispatcher TaskDispatcher,
	music MusicService,
	logger *zap.Logger,
) *PlaylistService {
	return &PlaylistService{
		playlists:  playlists,
		users:      users,
		dispatcher: dispatcher,
		music:      music,
		logger:     logger,
	}
}

// ToggleLock инвертирует блокировку плейлиста и возвращает новое
// значение; операция допустима в любом статусе
func (s *PlaylistService) ToggleLock(playlistID int) (bool, error) {
	locked, err := s.playlists.ToggleLock(playlistID)
	if err != nil {
		return false, err
	}

	s.logger.Info("Playlist lock toggled",
		zap.Int("playlist_id", playlistID),
		zap.Bool("locked", locked))

	return locked, nil
}

// Regenerate запускает перегенерацию плейлиста. Если плейлист занят
// генерацией или заблокирован, возвращается model.ErrNotAvailable.
func (s *PlaylistService) Regenerate(playlistID int) error {
	playlist, err := s.playlists.GetByID(playlistID)
	if err != nil {
		return err
	}
	if playlist == nil {
		return model.ErrNotFound
	}

	ok, err := s.playlists.TransitionToProcessing(playlistID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotAvailable
	}

	s.dispatcher.Dispatch(queue.TaskTypeGeneratePlaylist, playlist.UserID, playlistID)
	return nil
}

// RegenerateCover запускает перегенерацию обложки. Помимо общих условий
// пригодности требуется сохраненный промпт обложки.
func (s *PlaylistService) RegenerateCover(playlistID int) error {
	playlist, err := s.playlists.GetByID(playlistID)
	if err != nil {
		return err
	}
	if playlist == nil {
		return model.ErrNotFound
	}

	ok, err := s.playlists.TransitionToGeneratingCover(playlistID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotAvailable
	}

	s.dispatcher.Dispatch(queue.TaskTypeGenerateCover, playlist.UserID, playlistID)
	return nil
}

// Follow подписывает пользователя на плейлист в Spotify
func (s *PlaylistService) Follow(ctx context.Context, playlistID int) error {
	playlist, auth, err := s.spotifyTarget(playlistID)
	if err != nil {
		return err
	}

	if err := s.music.FollowPlaylist(ctx, auth, playlist.SpotifyID); err != nil {
		return fmt.Errorf("failed to follow playlist: %w", err)
	}

	return nil
}

// Unfollow отписывает пользователя от плейлиста в Spotify
func (s *PlaylistService) Unfollow(ctx context.Context, playlistID int) error {
	playlist, auth, err := s.spotifyTarget(playlistID)
	if err != nil {
		return err
	}

	if err := s.music.UnfollowPlaylist(ctx, auth, playlist.SpotifyID); err != nil {
		return fmt.Errorf("failed to unfollow playlist: %w", err)
	}

	return nil
}

// spotifyTarget загружает плейлист с опубликованным Spotify ID и
// авторизацию его владельца
func (s *PlaylistService) spotifyTarget(playlistID int) (*model.Playlist, *model.Authentication, error) {
	playlist, err := s.playlists.GetByID(playlistID)
	if err != nil {
		return nil, nil, err
	}
	if playlist == nil {
		return nil, nil, model.ErrNotFound
	}
	if playlist.SpotifyID == "" {
		return nil, nil, model.ErrNotAvailable
	}

	auth, err := s.users.GetAuthentication(playlist.UserID, model.ProviderSpotify)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load spotify authentication: %w", err)
	}
	if auth == nil {
		return nil, nil, model.ErrNotAvailable
	}

	return playlist, auth, nil
}
