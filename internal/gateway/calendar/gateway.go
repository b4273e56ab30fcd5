// Package calendar реализует шлюз к внешним тренировочным календарям.
//
// Вариант провайдера выбирается по настройке пользователя: каждой
// записи enum соответствует своя реализация WorkoutSource.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"runmix/internal/model"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gateway выбирает провайдера тренировок по настройкам пользователя
type Gateway struct {
	sources map[model.CalendarProvider]WorkoutSource
	logger  *zap.Logger
}

// NewGateway создает новый календарный шлюз с провайдерами из конфигурации
func NewGateway(config Config, logger *zap.Logger) *Gateway {
	httpClient := NewHTTPClient(config.HTTPClientConfig, config.RetryConfig, logger)

	gateway := &Gateway{
		sources: make(map[model.CalendarProvider]WorkoutSource),
		logger:  logger,
	}

	gateway.register(NewIntervalsClient(config.IntervalsBaseURL, httpClient, logger))
	gateway.register(NewTrainingPeaksClient(config.TrainingPeaksBaseURL, httpClient, logger))

	return gateway
}

// register регистрирует провайдера тренировок
func (g *Gateway) register(source WorkoutSource) {
	g.sources[source.Provider()] = source
	g.logger.Info("Registered workout source", zap.String("provider", source.Provider().String()))
}

// TodaysWorkouts возвращает тренировки пользователя за указанный день.
// Без настроенного календарного источника список пуст, это не ошибка.
func (g *Gateway) TodaysWorkouts(ctx context.Context, pref *model.Preference, day time.Time) ([]model.Workout, error) {
	if pref == nil || pref.Provider == model.CalendarProviderNone {
		return nil, nil
	}

	source, exists := g.sources[pref.Provider]
	if !exists {
		g.logger.Warn("Unknown calendar provider, skipping",
			zap.String("provider", pref.Provider.String()))
		return nil, nil
	}

	workouts, err := source.TodaysWorkouts(ctx, pref, day)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workouts from %s: %w", pref.Provider, err)
	}

	return workouts, nil
}

var nameCaser = cases.Title(language.English)

// normalizeWorkoutName приводит имя тренировки к каноническому виду:
// имя участвует в ключе уникальности плейлиста, поэтому разные написания
// одной тренировки должны схлопываться в одно
func normalizeWorkoutName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return nameCaser.String(name)
}
