// Package calendar реализует шлюз к внешним тренировочным календарям.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"runmix/internal/model"

	"go.uber.org/zap"
)

// IntervalsClient получает тренировки из календаря intervals.icu
type IntervalsClient struct {
	baseURL string
	http    *HTTPClient
	logger  *zap.Logger
}

// intervalsEvent представляет событие календаря intervals.icu
type intervalsEvent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	MovingTime  int    `json:"moving_time"` // секунды
}

// NewIntervalsClient создает новый клиент intervals.icu
func NewIntervalsClient(baseURL string, httpClient *HTTPClient, logger *zap.Logger) *IntervalsClient {
	return &IntervalsClient{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}
}

// Provider возвращает идентификатор провайдера
func (c *IntervalsClient) Provider() model.CalendarProvider {
	return model.CalendarProviderIntervals
}

// TodaysWorkouts возвращает тренировки атлета за день.
// intervals.icu авторизует по basic auth с логином API_KEY.
func (c *IntervalsClient) TodaysWorkouts(ctx context.Context, pref *model.Preference, day time.Time) ([]model.Workout, error) {
	date := day.Format("2006-01-02")
	endpoint := fmt.Sprintf("%s/api/v1/athlete/%s/events?oldest=%s&newest=%s&category=WORKOUT",
		c.baseURL, url.PathEscape(pref.AthleteID), date, date)

	var events []intervalsEvent
	err := c.http.GetJSON(ctx, endpoint, func(req *http.Request) {
		req.SetBasicAuth("API_KEY", pref.APIKey)
	}, &events)
	if err != nil {
		return nil, fmt.Errorf("intervals.icu request failed: %w", err)
	}

	workouts := make([]model.Workout, 0, len(events))
	for _, event := range events {
		name := normalizeWorkoutName(event.Name)
		if name == "" {
			continue
		}

		workouts = append(workouts, model.Workout{
			Name:            name,
			Description:     event.Description,
			DurationMinutes: event.MovingTime / 60,
		})
	}

	c.logger.Debug("Fetched workouts from intervals.icu",
		zap.String("athlete_id", pref.AthleteID),
		zap.String("day", date),
		zap.Int("count", len(workouts)))

	return workouts, nil
}
