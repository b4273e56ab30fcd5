package calendar

import (
	"context"
	"testing"
	"time"

	"runmix/internal/model"

	"go.uber.org/zap"
)

func TestNormalizeWorkoutName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"morning run", "Morning Run"},
		{"  tempo   intervals ", "Tempo Intervals"},
		{"LONG RIDE", "Long Ride"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := normalizeWorkoutName(tt.in); got != tt.want {
			t.Errorf("normalizeWorkoutName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGateway_TodaysWorkoutsWithoutProvider(t *testing.T) {
	gateway := NewGateway(Config{}, zap.NewNop())
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		pref *model.Preference
	}{
		{name: "nil preference"},
		{name: "no provider configured", pref: &model.Preference{Provider: model.CalendarProviderNone}},
		{name: "unknown provider", pref: &model.Preference{Provider: model.CalendarProvider("garmin")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workouts, err := gateway.TodaysWorkouts(context.Background(), tt.pref, day)
			if err != nil {
				t.Fatalf("TodaysWorkouts() error = %v", err)
			}
			if len(workouts) != 0 {
				t.Errorf("TodaysWorkouts() = %v, want empty", workouts)
			}
		})
	}
}

func TestGateway_RegistersBothProviders(t *testing.T) {
	gateway := NewGateway(Config{
		IntervalsBaseURL:     "https://intervals.icu",
		TrainingPeaksBaseURL: "https://api.trainingpeaks.com",
	}, zap.NewNop())

	for _, provider := range []model.CalendarProvider{model.CalendarProviderIntervals, model.CalendarProviderTrainingPeaks} {
		if _, exists := gateway.sources[provider]; !exists {
			t.Errorf("provider %s is not registered", provider)
		}
	}
}
