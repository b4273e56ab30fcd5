// Package calendar реализует шлюз к внешним тренировочным календарям.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"runmix/internal/model"

	"go.uber.org/zap"
)

// TrainingPeaksClient получает тренировки из календаря TrainingPeaks
type TrainingPeaksClient struct {
	baseURL string
	http    *HTTPClient
	logger  *zap.Logger
}

// trainingPeaksWorkout представляет запланированную тренировку TrainingPeaks
type trainingPeaksWorkout struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	TotalTimePlanned float64 `json:"totalTimePlanned"` // часы
}

// NewTrainingPeaksClient создает новый клиент TrainingPeaks
func NewTrainingPeaksClient(baseURL string, httpClient *HTTPClient, logger *zap.Logger) *TrainingPeaksClient {
	return &TrainingPeaksClient{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}
}

// Provider возвращает идентификатор провайдера
func (c *TrainingPeaksClient) Provider() model.CalendarProvider {
	return model.CalendarProviderTrainingPeaks
}

// TodaysWorkouts возвращает запланированные тренировки за день
func (c *TrainingPeaksClient) TodaysWorkouts(ctx context.Context, pref *model.Preference, day time.Time) ([]model.Workout, error) {
	date := day.Format("2006-01-02")
	endpoint := fmt.Sprintf("%s/v1/workouts/%s/%s", c.baseURL, date, date)

	var planned []trainingPeaksWorkout
	err := c.http.GetJSON(ctx, endpoint, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+pref.APIKey)
	}, &planned)
	if err != nil {
		return nil, fmt.Errorf("trainingpeaks request failed: %w", err)
	}

	workouts := make([]model.Workout, 0, len(planned))
	for _, workout := range planned {
		name := normalizeWorkoutName(workout.Title)
		if name == "" {
			continue
		}

		workouts = append(workouts, model.Workout{
			Name:            name,
			Description:     workout.Description,
			DurationMinutes: int(workout.TotalTimePlanned * 60),
		})
	}

	c.logger.Debug("Fetched workouts from TrainingPeaks",
		zap.String("day", date),
		zap.Int("count", len(workouts)))

	return workouts, nil
}
