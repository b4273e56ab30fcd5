// Package model содержит модели данных и интерфейсы репозиториев.
package model

// Workout представляет тренировку из внешнего календаря; не персистится,
// существует только как результат запроса календарного шлюза
type Workout struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
}
