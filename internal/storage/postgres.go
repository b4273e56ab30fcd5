// Package storage содержит работу с базой данных.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"runmix/internal/model"
	"runmix/internal/storage/repository"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"
)

// Postgres представляет подключение к PostgreSQL
type Postgres struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPostgres создает новое подключение к PostgreSQL с retry логикой
func NewPostgres(databaseURL string, logger *zap.Logger) (*Postgres, error) {
	const maxRetries = 10
	const retryDelay = 5 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		logger.Info("Attempting to connect to database",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries))

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(databaseURL)))

		sqldb.SetMaxOpenConns(25)
		sqldb.SetMaxIdleConns(10)
		sqldb.SetConnMaxLifetime(5 * time.Minute)
		sqldb.SetConnMaxIdleTime(1 * time.Minute)

		db := bun.NewDB(sqldb, pgdialect.New())

		if logger.Core().Enabled(zap.DebugLevel) {
			db.AddQueryHook(bundebug.NewQueryHook(
				bundebug.WithVerbose(true),
				bundebug.FromEnv("BUNDEBUG"),
			))
		}

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
		pingErr := db.PingContext(pingCtx)
		pingCancel()

		if pingErr != nil {
			logger.Warn("Failed to connect to database",
				zap.Int("attempt", attempt),
				zap.Error(pingErr))

			if err := db.Close(); err != nil {
				logger.Warn("Failed to close database connection", zap.Error(err))
			}

			if attempt == maxRetries {
				return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, pingErr)
			}

			logger.Info("Retrying connection", zap.Duration("delay", retryDelay))
			time.Sleep(retryDelay)
			continue
		}

		logger.Info("Connected to PostgreSQL database with Bun ORM",
			zap.Int("attempt", attempt))

		return &Postgres{
			db:     db,
			logger: logger,
		}, nil
	}

	return nil, fmt.Errorf("unexpected error: max retries exceeded")
}

// Migrate создает таблицы и индексы. Уникальный индекс
// (user_id, workout_name, workout_day) обязателен: он превращает
// гонку конкурирующих создателей плейлиста в нарушение ограничения,
// которое репозиторий переводит в model.ErrDuplicatePlaylist.
func (p *Postgres) Migrate(ctx context.Context) error {
	models := []interface{}{
		(*model.User)(nil),
		(*model.Preference)(nil),
		(*model.Authentication)(nil),
		(*model.MusicRequest)(nil),
		(*model.Playlist)(nil),
		(*model.Track)(nil),
	}

	for _, m := range models {
		if _, err := p.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", m, err)
		}
	}

	if _, err := p.db.NewCreateIndex().
		Model((*model.Playlist)(nil)).
		Index("playlists_user_workout_day_key").
		Unique().
		IfNotExists().
		Column("user_id", "workout_name", "workout_day").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create playlists unique index: %w", err)
	}

	if _, err := p.db.NewCreateIndex().
		Model((*model.Track)(nil)).
		Index("tracks_playlist_id_idx").
		IfNotExists().
		Column("playlist_id").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create tracks index: %w", err)
	}

	if _, err := p.db.NewCreateIndex().
		Model((*model.Authentication)(nil)).
		Index("authentications_user_provider_key").
		Unique().
		IfNotExists().
		Column("user_id", "provider").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create authentications unique index: %w", err)
	}

	p.logger.Info("Database migration completed")
	return nil
}

// Close закрывает соединение с базой данных
func (p *Postgres) Close() error {
	return p.db.Close()
}

// GetDB возвращает подключение к базе данных
func (p *Postgres) GetDB() *bun.DB {
	return p.db
}

// Ping проверяет доступность базы данных
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// GetUserRepository возвращает репозиторий пользователей
func (p *Postgres) GetUserRepository() model.UserRepository {
	return repository.NewUserRepository(p.db, p.logger)
}

// GetPlaylistRepository возвращает репозиторий плейлистов
func (p *Postgres) GetPlaylistRepository() model.PlaylistRepository {
	return repository.NewPlaylistRepository(p.db, p.logger)
}

// GetTrackRepository возвращает репозиторий треков
func (p *Postgres) GetTrackRepository() model.TrackRepository {
	return repository.NewTrackRepository(p.db, p.logger)
}
