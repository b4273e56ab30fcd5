package service

import (
	"testing"

	"runmix/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLifecycleService_CompleteGeneration(t *testing.T) {
	playlists := newFakePlaylistRepository()
	tracks := &fakeTrackRepository{}
	svc := NewLifecycleService(playlists, tracks, zap.NewNop())

	playlist := playlists.add(&model.Playlist{
		UserID:      1,
		WorkoutName: "Run",
		WorkoutDay:  "2026-08-29",
		Status:      model.StatusProcessing,
	})

	err := svc.CompleteGeneration(playlist.ID, []*model.Track{
		{PlaylistID: playlist.ID, SpotifyURI: "spotify:track:1", Artist: "A", Title: "B"},
	}, "stadium lights")
	require.NoError(t, err)

	updated, _ := playlists.GetByID(playlist.ID)
	assert.Equal(t, model.StatusReady, updated.Status)
	assert.Equal(t, "stadium lights", updated.CoverPrompt)
}

func TestLifecycleService_CompleteGenerationKeepsPrompt(t *testing.T) {
	playlists := newFakePlaylistRepository()
	svc := NewLifecycleService(playlists, &fakeTrackRepository{}, zap.NewNop())

	playlist := playlists.add(&model.Playlist{
		UserID:      1,
		WorkoutName: "Run",
		WorkoutDay:  "2026-08-29",
		Status:      model.StatusProcessing,
		CoverPrompt: "old prompt",
	})

	// Пустой промпт от модели не затирает сохраненный
	require.NoError(t, svc.CompleteGeneration(playlist.ID, nil, ""))

	updated, _ := playlists.GetByID(playlist.ID)
	assert.Equal(t, "old prompt", updated.CoverPrompt)
}

func TestLifecycleService_CompleteCover(t *testing.T) {
	playlists := newFakePlaylistRepository()
	svc := NewLifecycleService(playlists, &fakeTrackRepository{}, zap.NewNop())

	playlist := playlists.add(&model.Playlist{
		UserID:      1,
		WorkoutName: "Run",
		WorkoutDay:  "2026-08-29",
		Status:      model.StatusGeneratingCover,
		CoverPrompt: "stadium lights",
	})

	require.NoError(t, svc.CompleteCover(playlist.ID, "https://img/cover.png"))

	updated, _ := playlists.GetByID(playlist.ID)
	assert.Equal(t, model.StatusReady, updated.Status)
	assert.Equal(t, "https://img/cover.png", updated.CoverURL)
}
