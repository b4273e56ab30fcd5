// Package repository содержит реализации репозиториев для работы с базой данных.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"runmix/internal/model"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
)

// PlaylistRepository реализует интерфейс model.PlaylistRepository
type PlaylistRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPlaylistRepository создает новый репозиторий плейлистов
func NewPlaylistRepository(db *bun.DB, logger *zap.Logger) model.PlaylistRepository {
	return &PlaylistRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID получает плейлист по ID
func (r *PlaylistRepository) GetByID(id int) (*model.Playlist, error) {
	ctx := context.Background()
	var playlist model.Playlist

	err := r.db.NewSelect().Model(&playlist).Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get playlist by ID: %w", err)
	}

	return &playlist, nil
}

// Find получает плейлист по ключу (пользователь, тренировка, день)
func (r *PlaylistRepository) Find(userID int, workoutName, workoutDay string) (*model.Playlist, error) {
	ctx := context.Background()
	var playlist model.Playlist

	err := r.db.NewSelect().Model(&playlist).
		Where("p.user_id = ?", userID).
		Where("p.workout_name = ?", workoutName).
		Where("p.workout_day = ?", workoutDay).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find playlist: %w", err)
	}

	return &playlist, nil
}

// Create создает новый плейлист; при нарушении уникальности
// (user_id, workout_name, workout_day) возвращает model.ErrDuplicatePlaylist
func (r *PlaylistRepository) Create(playlist *model.Playlist) error {
	ctx := context.Background()

	_, err := r.db.NewInsert().Model(playlist).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicatePlaylist
		}
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	return nil
}

// TransitionToProcessing переводит плейлист в processing одним условным
// UPDATE; false означает, что плейлист не пригоден для перегенерации
// (уже генерируется или заблокирован)
func (r *PlaylistRepository) TransitionToProcessing(id int) (bool, error) {
	ctx := context.Background()

	res, err := r.db.NewUpdate().Model((*model.Playlist)(nil)).
		Set("status = ?", model.StatusProcessing).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("status NOT IN (?)", bun.In([]model.PlaylistStatus{model.StatusProcessing, model.StatusGeneratingCover})).
		Where("locked = ?", false).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to transition playlist to processing: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows == 1, nil
}

// TransitionToGeneratingCover переводит плейлист в generating_cover;
// дополнительно требует сохраненный промпт обложки
func (r *PlaylistRepository) TransitionToGeneratingCover(id int) (bool, error) {
	ctx := context.Background()

	res, err := r.db.NewUpdate().Model((*model.Playlist)(nil)).
		Set("status = ?", model.StatusGeneratingCover).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("status NOT IN (?)", bun.In([]model.PlaylistStatus{model.StatusProcessing, model.StatusGeneratingCover})).
		Where("locked = ?", false).
		Where("cover_prompt <> ''").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to transition playlist to generating_cover: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows == 1, nil
}

// MarkReady переводит плейлист в ready после успешной генерации;
// промпт обложки сохраняется, если он непустой
func (r *PlaylistRepository) MarkReady(id int, coverPrompt string) error {
	ctx := context.Background()

	query := r.db.NewUpdate().Model((*model.Playlist)(nil)).
		Set("status = ?", model.StatusReady).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id)

	if coverPrompt != "" {
		query = query.Set("cover_prompt = ?", coverPrompt)
	}

	if _, err := query.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark playlist ready: %w", err)
	}

	return nil
}

// MarkCoverReady переводит плейлист в ready после генерации обложки
func (r *PlaylistRepository) MarkCoverReady(id int, coverURL string) error {
	ctx := context.Background()

	query := r.db.NewUpdate().Model((*model.Playlist)(nil)).
		Set("status = ?", model.StatusReady).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id)

	if coverURL != "" {
		query = query.Set("cover_url = ?", coverURL)
	}

	if _, err := query.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark playlist cover ready: %w", err)
	}

	return nil
}

// SetSpotifyID сохраняет идентификатор плейлиста в Spotify
func (r *PlaylistRepository) SetSpotifyID(id int, spotifyID string) error {
	ctx := context.Background()

	_, err := r.db.NewUpdate().Model((*model.Playlist)(nil)).
		Set("spotify_id = ?", spotifyID).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set playlist spotify ID: %w", err)
	}

	return nil
}

// ToggleLock инвертирует флаг блокировки и возвращает новое значение.
// Блокировка допустима в любом статусе и сама по себе не меняет статус.
func (r *PlaylistRepository) ToggleLock(id int) (bool, error) {
	ctx := context.Background()
	var locked bool

	err := r.db.NewUpdate().Model((*model.Playlist)(nil)).
		Set("locked = NOT locked").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Returning("locked").
		Scan(ctx, &locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, model.ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle playlist lock: %w", err)
	}

	return locked, nil
}

// isUniqueViolation определяет нарушение уникального ограничения Postgres
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
