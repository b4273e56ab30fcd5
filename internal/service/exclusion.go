// Package service содержит бизнес-логику приложения.
package service

import (
	"fmt"
	"strings"
	"time"

	"runmix/internal/model"

	"go.uber.org/zap"
)

// exclusionWindow за сколько дней назад треки считаются недавними
const exclusionWindow = 14 * 24 * time.Hour

// ExclusionBuilder строит список недавних треков пользователя, который
// передается модели, чтобы она не повторяла музыку между плейлистами
type ExclusionBuilder struct {
	tracks model.TrackRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewExclusionBuilder создает новый построитель списка исключений
func NewExclusionBuilder(tracks model.TrackRepository, logger *zap.Logger) *ExclusionBuilder {
	return &ExclusionBuilder{
		tracks: tracks,
		logger: logger,
		now:    time.Now,
	}
}

// Build возвращает текст списка исключений за последние две недели.
// Пустая строка означает, что исключать нечего. Дубликаты по URI
// схлопываются, первое вхождение выигрывает.
func (b *ExclusionBuilder) Build(userID int) (string, error) {
	since := b.now().Add(-exclusionWindow)

	recent, err := b.tracks.GetRecentByUserID(userID, since)
	if err != nil {
		return "", fmt.Errorf("failed to load recent tracks: %w", err)
	}

	if len(recent) == 0 {
		return "", nil
	}

	seen := make(map[string]struct{}, len(recent))
	var sb strings.Builder
	sb.WriteString("Do not include any of these recently used tracks:\n")

	count := 0
	for _, track := range recent {
		if _, ok := seen[track.SpotifyURI]; ok {
			continue
		}
		seen[track.SpotifyURI] = struct{}{}

		fmt.Fprintf(&sb, "- %s - %s\n", track.Artist, track.Title)
		count++
	}

	b.logger.Debug("Built track exclusion list",
		zap.Int("user_id", userID),
		zap.Int("excluded_tracks", count))

	return sb.String(), nil
}
