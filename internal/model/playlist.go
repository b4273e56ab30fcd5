// Package model содержит модели данных и интерфейсы репозиториев.
//
// Группа: ENTITIES - Основные сущности
// Содержит: Playlist, PlaylistStatus, PlaylistRepository
package model

import (
	"github.com/uptrace/bun"
)

// PlaylistStatus представляет статус генерации плейлиста
type PlaylistStatus string

const (
	StatusProcessing      PlaylistStatus = "processing"
	StatusReady           PlaylistStatus = "ready"
	StatusGeneratingCover PlaylistStatus = "generating_cover"
)

// IsValid проверяет валидность статуса
func (s PlaylistStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusReady, StatusGeneratingCover:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление статуса
func (s PlaylistStatus) String() string {
	return string(s)
}

// Playlist представляет плейлист, привязанный к одной тренировке дня.
// Пара статус+locked служит единственным механизмом взаимного исключения
// для конкурирующих операций: любая смена статуса выполняется условным
// UPDATE, несущим в себе проверку пригодности.
type Playlist struct {
	bun.BaseModel `bun:"table:playlists,alias:p"`

	ID                 int            `bun:"id,pk,autoincrement" json:"id"`
	UserID             int            `bun:"user_id,notnull,unique:playlists_user_workout_day_key" json:"user_id"`
	WorkoutName        string         `bun:"workout_name,notnull,unique:playlists_user_workout_day_key" json:"workout_name"`
	WorkoutDescription string         `bun:"workout_description,notnull,default:''" json:"workout_description"`
	WorkoutDuration    int            `bun:"workout_duration,notnull,default:0" json:"workout_duration"`
	WorkoutDay         string         `bun:"workout_day,notnull,unique:playlists_user_workout_day_key" json:"workout_day"`
	Status             PlaylistStatus `bun:"status,notnull,default:'processing'" json:"status"`
	Locked             bool           `bun:"locked,notnull,default:false" json:"locked"`
	CoverPrompt        string         `bun:"cover_prompt,notnull,default:''" json:"cover_prompt"`
	CoverURL           string         `bun:"cover_url,notnull,default:''" json:"cover_url"`
	SpotifyID          string         `bun:"spotify_id,notnull,default:''" json:"spotify_id"`

	Tracks []*Track `bun:"rel:has-many,join:id=playlist_id" json:"tracks,omitempty"`

	TimestampedModel
}

// EligibleForReprocessing сообщает, допустим ли новый цикл генерации:
// плейлист не в процессе генерации и не заблокирован пользователем
func (p *Playlist) EligibleForReprocessing() bool {
	return p.Status != StatusProcessing && p.Status != StatusGeneratingCover && !p.Locked
}

// EligibleForCoverRegeneration сообщает, допустима ли перегенерация
// обложки: дополнительно требуется сохраненный промпт обложки
func (p *Playlist) EligibleForCoverRegeneration() bool {
	return p.EligibleForReprocessing() && p.CoverPrompt != ""
}

// PlaylistRepository определяет интерфейс для работы с плейлистами.
// Transition* методы атомарны: проверка пригодности и смена статуса
// происходят одним условным UPDATE, возвращающим признак успеха.
type PlaylistRepository interface {
	GetByID(id int) (*Playlist, error)
	Find(userID int, workoutName, workoutDay string) (*Playlist, error)
	Create(playlist *Playlist) error
	TransitionToProcessing(id int) (bool, error)
	TransitionToGeneratingCover(id int) (bool, error)
	MarkReady(id int, coverPrompt string) error
	MarkCoverReady(id int, coverURL string) error
	SetSpotifyID(id int, spotifyID string) error
	ToggleLock(id int) (bool, error)
}
