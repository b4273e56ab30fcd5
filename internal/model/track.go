// Package model содержит модели данных и интерфейсы репозиториев.
//
// Группа: ENTITIES - Основные сущности
// Содержит: Track, TrackRepository
package model

import (
	"time"

	"github.com/uptrace/bun"
)

// Track представляет трек в плейлисте
type Track struct {
	bun.BaseModel `bun:"table:tracks,alias:t"`

	ID         int       `bun:"id,pk,autoincrement" json:"id"`
	PlaylistID int       `bun:"playlist_id,notnull" json:"playlist_id"`
	SpotifyURI string    `bun:"spotify_uri,notnull,default:''" json:"spotify_uri"`
	Artist     string    `bun:"artist,notnull" json:"artist"`
	Title      string    `bun:"title,notnull" json:"title"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// TrackRepository определяет интерфейс для работы с треками
type TrackRepository interface {
	GetByPlaylistID(playlistID int) ([]Track, error)
	// GetRecentByUserID возвращает треки всех плейлистов пользователя
	// с непустым spotify_uri, созданные не раньше since,
	// упорядоченные по убыванию времени создания
	GetRecentByUserID(userID int, since time.Time) ([]Track, error)
	CreateMany(tracks []*Track) error
	DeleteByPlaylistID(playlistID int) error
}
