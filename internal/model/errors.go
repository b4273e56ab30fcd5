// Package model содержит модели данных и интерфейсы репозиториев.
package model

import "errors"

var (
	// ErrNotFound возвращается, когда запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrDuplicatePlaylist возвращается при нарушении уникальности
	// (user_id, workout_name, workout_day); проигравший гонку создатель
	// должен перечитать выигравшую строку, а не считать это сбоем
	ErrDuplicatePlaylist = errors.New("playlist already exists for this workout and day")

	// ErrNotAvailable возвращается, когда операция над плейлистом
	// недоступна в его текущем состоянии
	ErrNotAvailable = errors.New("playlist is not available for this operation right now")
)
