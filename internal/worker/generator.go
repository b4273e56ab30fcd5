// Package worker содержит исполнителей фоновых задач генерации.
package worker

import (
	"context"
	"fmt"

	"runmix/internal/gateway/llm"
	"runmix/internal/gateway/spotify"
	"runmix/internal/model"
	"runmix/internal/queue"
	"runmix/internal/service"

	"go.uber.org/zap"
)

// MusicGateway определяет операции Spotify, нужные генератору
type MusicGateway interface {
	SearchTrack(ctx context.Context, auth *model.Authentication, artist, title string) (*spotify.TrackMatch, error)
	CreatePlaylist(ctx context.Context, auth *model.Authentication, name, description string) (string, error)
	ReplacePlaylistTracks(ctx context.Context, auth *model.Authentication, spotifyID string, uris []string) error
}

// TracklistGenerator определяет интерфейс подбора треков моделью
type TracklistGenerator interface {
	GenerateTracklist(ctx context.Context, request llm.TracklistRequest) (*llm.TracklistResponse, error)
}

// Notifier определяет интерфейс уведомления о сбоях генерации
type Notifier interface {
	NotifyFailure(message string)
}

// PlaylistGenerator выполняет задачи генерации треклиста. Повторно
// доставленная задача определяется по статусу плейлиста и молча
// пропускается.
type PlaylistGenerator struct {
	playlists  model.PlaylistRepository
	users      model.UserRepository
	exclusions *service.ExclusionBuilder
	lifecycle  *service.LifecycleService
	llm        TracklistGenerator
	music      MusicGateway
	notifier   Notifier
	logger     *zap.Logger
}

// NewPlaylistGenerator создает новый генератор плейлистов
func NewPlaylistGenerator(
	playlists model.PlaylistRepository,
	users model.UserRepository,
	exclusions *service.ExclusionBuilder,
	lifecycle *service.LifecycleService,
	llmGen TracklistGenerator,
	music MusicGateway,
	notifier Notifier,
	logger *zap.Logger,
) *PlaylistGenerator {
	return &PlaylistGenerator{
		playlists:  playlists,
		users:      users,
		exclusions: exclusions,
		lifecycle:  lifecycle,
		llm:        llmGen,
		music:      music,
		notifier:   notifier,
		logger:     logger,
	}
}

// Execute генерирует треклист плейлиста и публикует его в Spotify
func (g *PlaylistGenerator) Execute(ctx context.Context, task queue.Task) error {
	playlist, err := g.playlists.GetByID(task.PlaylistID)
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}
	if playlist == nil {
		g.logger.Warn("Playlist for task no longer exists",
			zap.Int("playlist_id", task.PlaylistID))
		return nil
	}
	if playlist.Status != model.StatusProcessing {
		g.logger.Debug("Playlist is not in processing, skipping task",
			zap.Int("playlist_id", playlist.ID),
			zap.String("status", playlist.Status.String()))
		return nil
	}

	if err := g.generate(ctx, playlist); err != nil {
		g.notifyFailure(playlist, err)
		return err
	}

	return nil
}

// generate выполняет полный цикл генерации одного плейлиста
func (g *PlaylistGenerator) generate(ctx context.Context, playlist *model.Playlist) error {
	auth, err := g.users.GetAuthentication(playlist.UserID, model.ProviderSpotify)
	if err != nil {
		return fmt.Errorf("failed to load spotify authentication: %w", err)
	}
	if auth == nil {
		return fmt.Errorf("user %d has no spotify authentication", playlist.UserID)
	}

	exclusions, err := g.exclusions.Build(playlist.UserID)
	if err != nil {
		return err
	}

	tracklist, err := g.llm.GenerateTracklist(ctx, llm.TracklistRequest{
		WorkoutName:        playlist.WorkoutName,
		WorkoutDescription: playlist.WorkoutDescription,
		DurationMinutes:    playlist.WorkoutDuration,
		Exclusions:         exclusions,
	})
	if err != nil {
		return err
	}

	matches := g.resolveTracks(ctx, auth, tracklist.Tracks)
	if len(matches) == 0 {
		return fmt.Errorf("no suggested tracks found on spotify for playlist %d", playlist.ID)
	}

	spotifyID := playlist.SpotifyID
	if spotifyID == "" {
		name := fmt.Sprintf("%s %s", playlist.WorkoutName, playlist.WorkoutDay)
		spotifyID, err = g.music.CreatePlaylist(ctx, auth, name, playlist.WorkoutDescription)
		if err != nil {
			return err
		}

		if err := g.playlists.SetSpotifyID(playlist.ID, spotifyID); err != nil {
			return err
		}
	}

	uris := make([]string, 0, len(matches))
	for _, match := range matches {
		uris = append(uris, match.URI)
	}

	if err := g.music.ReplacePlaylistTracks(ctx, auth, spotifyID, uris); err != nil {
		return err
	}

	tracks := make([]*model.Track, 0, len(matches))
	for _, match := range matches {
		tracks = append(tracks, &model.Track{
			PlaylistID: playlist.ID,
			SpotifyURI: match.URI,
			Artist:     match.Artist,
			Title:      match.Title,
		})
	}

	return g.lifecycle.CompleteGeneration(playlist.ID, tracks, tracklist.CoverPrompt)
}

// resolveTracks ищет предложенные моделью треки в Spotify; ненайденные
// и несработавшие поиски пропускаются
func (g *PlaylistGenerator) resolveTracks(ctx context.Context, auth *model.Authentication, suggested []llm.SuggestedTrack) []*spotify.TrackMatch {
	matches := make([]*spotify.TrackMatch, 0, len(suggested))
	for _, track := range suggested {
		match, err := g.music.SearchTrack(ctx, auth, track.Artist, track.Title)
		if err != nil {
			g.logger.Warn("Spotify track search failed",
				zap.String("artist", track.Artist),
				zap.String("title", track.Title),
				zap.Error(err))
			continue
		}
		if match == nil {
			continue
		}
		matches = append(matches, match)
	}
	return matches
}

// notifyFailure отправляет уведомление о сбое генерации, если
// уведомитель настроен
func (g *PlaylistGenerator) notifyFailure(playlist *model.Playlist, err error) {
	if g.notifier == nil {
		return
	}
	g.notifier.NotifyFailure(fmt.Sprintf("Playlist generation failed for %q (id %d, day %s): %v",
		playlist.WorkoutName, playlist.ID, playlist.WorkoutDay, err))
}
