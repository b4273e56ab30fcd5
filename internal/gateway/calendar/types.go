// Package calendar реализует шлюз к внешним тренировочным календарям.
package calendar

import (
	"context"
	"time"

	"runmix/internal/model"
)

// Config конфигурация календарного шлюза
type Config struct {
	IntervalsBaseURL     string
	TrainingPeaksBaseURL string
	HTTPClientConfig     HTTPClientConfig
	RetryConfig          RetryConfig
}

// HTTPClientConfig представляет конфигурацию HTTP клиента
type HTTPClientConfig struct {
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	DisableKeepAlives     bool
}

// RetryConfig представляет конфигурацию retry механизма
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// WorkoutSource определяет способность провайдера отдавать тренировки
// пользователя за указанный день
type WorkoutSource interface {
	Provider() model.CalendarProvider
	TodaysWorkouts(ctx context.Context, pref *model.Preference, day time.Time) ([]model.Workout, error)
}
