// Package model содержит модели данных и интерфейсы репозиториев.
//
// Группа: ENTITIES - Пользователь и его настройки
// Содержит: User, Preference, Authentication, MusicRequest, UserRepository
package model

import (
	"time"

	"github.com/uptrace/bun"
)

// ProviderSpotify идентификатор музыкального сервиса в authentications
const ProviderSpotify = "spotify"

// CalendarProvider представляет вариант календарного провайдера
type CalendarProvider string

const (
	CalendarProviderNone          CalendarProvider = ""
	CalendarProviderIntervals     CalendarProvider = "intervals"
	CalendarProviderTrainingPeaks CalendarProvider = "trainingpeaks"
)

// IsValid проверяет валидность календарного провайдера
func (p CalendarProvider) IsValid() bool {
	switch p {
	case CalendarProviderIntervals, CalendarProviderTrainingPeaks:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление провайдера
func (p CalendarProvider) String() string {
	return string(p)
}

// User представляет пользователя сервиса
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID    int    `bun:"id,pk,autoincrement" json:"id"`
	Email string `bun:"email,unique,notnull" json:"email"`

	TimestampedModel
}

// Preference представляет настройки календаря пользователя
type Preference struct {
	bun.BaseModel `bun:"table:preferences,alias:pref"`

	ID        int              `bun:"id,pk,autoincrement" json:"id"`
	UserID    int              `bun:"user_id,notnull,unique" json:"user_id"`
	Provider  CalendarProvider `bun:"provider,notnull,default:''" json:"provider"`
	AthleteID string           `bun:"athlete_id,notnull,default:''" json:"athlete_id"`
	APIKey    string           `bun:"api_key,notnull,default:''" json:"-"`
	Timezone  string           `bun:"timezone,notnull,default:'UTC'" json:"timezone"`

	TimestampedModel
}

// Authentication представляет учетные данные внешнего сервиса
type Authentication struct {
	bun.BaseModel `bun:"table:authentications,alias:auth"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	UserID       int       `bun:"user_id,notnull,unique:authentications_user_provider_key" json:"user_id"`
	Provider     string    `bun:"provider,notnull,unique:authentications_user_provider_key" json:"provider"`
	ExternalID   string    `bun:"external_id,notnull" json:"external_id"`
	AccessToken  string    `bun:"access_token,notnull" json:"-"`
	RefreshToken string    `bun:"refresh_token,notnull,default:''" json:"-"`
	ExpiresAt    time.Time `bun:"expires_at,nullzero" json:"expires_at"`

	TimestampedModel
}

// MusicRequest представляет запрос пользователя на генерацию музыки;
// согласование запускается только при наличии активного запроса
type MusicRequest struct {
	bun.BaseModel `bun:"table:music_requests,alias:mr"`

	ID     int  `bun:"id,pk,autoincrement" json:"id"`
	UserID int  `bun:"user_id,notnull" json:"user_id"`
	Active bool `bun:"active,notnull,default:false" json:"active"`

	TimestampedModel
}

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	GetByID(id int) (*User, error)
	GetPreference(userID int) (*Preference, error)
	GetAuthentication(userID int, provider string) (*Authentication, error)
	HasActiveMusicRequest(userID int) (bool, error)
	GetActiveMusicRequestUserIDs() ([]int, error)
}
