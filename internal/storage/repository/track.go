// Package repository содержит реализации репозиториев для работы с базой данных.
package repository

import (
	"context"
	"fmt"
	"time"

	"runmix/internal/model"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// TrackRepository реализует интерфейс model.TrackRepository
type TrackRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewTrackRepository создает новый репозиторий треков
func NewTrackRepository(db *bun.DB, logger *zap.Logger) model.TrackRepository {
	return &TrackRepository{
		db:     db,
		logger: logger,
	}
}

// GetByPlaylistID возвращает все треки плейлиста
func (r *TrackRepository) GetByPlaylistID(playlistID int) ([]model.Track, error) {
	ctx := context.Background()
	var tracks []model.Track

	err := r.db.NewSelect().Model(&tracks).
		Where("t.playlist_id = ?", playlistID).
		Order("t.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracks by playlist ID: %w", err)
	}

	return tracks, nil
}

// GetRecentByUserID возвращает недавние треки всех плейлистов пользователя
// с непустым spotify_uri, упорядоченные по убыванию времени создания
func (r *TrackRepository) GetRecentByUserID(userID int, since time.Time) ([]model.Track, error) {
	ctx := context.Background()
	var tracks []model.Track

	err := r.db.NewSelect().Model(&tracks).
		Join("JOIN playlists AS p ON p.id = t.playlist_id").
		Where("p.user_id = ?", userID).
		Where("t.spotify_uri <> ''").
		Where("t.created_at >= ?", since).
		Order("t.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent tracks by user ID: %w", err)
	}

	return tracks, nil
}

// CreateMany сохраняет набор треков одним запросом
func (r *TrackRepository) CreateMany(tracks []*model.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ctx := context.Background()
	_, err := r.db.NewInsert().Model(&tracks).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create tracks: %w", err)
	}

	return nil
}

// DeleteByPlaylistID удаляет все треки плейлиста
func (r *TrackRepository) DeleteByPlaylistID(playlistID int) error {
	ctx := context.Background()

	_, err := r.db.NewDelete().Model((*model.Track)(nil)).
		Where("playlist_id = ?", playlistID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tracks by playlist ID: %w", err)
	}

	return nil
}
