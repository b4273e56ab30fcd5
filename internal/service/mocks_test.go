package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"runmix/internal/model"
	"runmix/internal/queue"
)

// fakeUserRepository реализует model.UserRepository в памяти
type fakeUserRepository struct {
	users          map[int]*model.User
	prefs          map[int]*model.Preference
	auths          map[int]*model.Authentication
	activeRequests map[int]bool
	prefErr        error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users:          make(map[int]*model.User),
		prefs:          make(map[int]*model.Preference),
		auths:          make(map[int]*model.Authentication),
		activeRequests: make(map[int]bool),
	}
}

func (f *fakeUserRepository) GetByID(id int) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepository) GetPreference(userID int) (*model.Preference, error) {
	if f.prefErr != nil {
		return nil, f.prefErr
	}
	return f.prefs[userID], nil
}

func (f *fakeUserRepository) GetAuthentication(userID int, provider string) (*model.Authentication, error) {
	auth := f.auths[userID]
	if auth == nil || auth.Provider != provider {
		return nil, nil
	}
	return auth, nil
}

func (f *fakeUserRepository) HasActiveMusicRequest(userID int) (bool, error) {
	return f.activeRequests[userID], nil
}

func (f *fakeUserRepository) GetActiveMusicRequestUserIDs() ([]int, error) {
	var ids []int
	for id, active := range f.activeRequests {
		if active {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fakePlaylistRepository реализует model.PlaylistRepository в памяти,
// воспроизводя семантику условных UPDATE и уникального индекса
type fakePlaylistRepository struct {
	mu        sync.Mutex
	nextID    int
	playlists map[int]*model.Playlist
	// findMisses заставляет Find вернуть "не найдено" заданное число
	// раз, имитируя гонку создания
	findMisses int
}

func newFakePlaylistRepository() *fakePlaylistRepository {
	return &fakePlaylistRepository{
		nextID:    1,
		playlists: make(map[int]*model.Playlist),
	}
}

func (f *fakePlaylistRepository) GetByID(id int) (*model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[id]
	if !ok {
		return nil, nil
	}
	copied := *playlist
	return &copied, nil
}

func (f *fakePlaylistRepository) Find(userID int, workoutName, workoutDay string) (*model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findMisses > 0 {
		f.findMisses--
		return nil, nil
	}
	for _, playlist := range f.playlists {
		if playlist.UserID == userID && playlist.WorkoutName == workoutName && playlist.WorkoutDay == workoutDay {
			copied := *playlist
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePlaylistRepository) Create(playlist *model.Playlist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.playlists {
		if existing.UserID == playlist.UserID &&
			existing.WorkoutName == playlist.WorkoutName &&
			existing.WorkoutDay == playlist.WorkoutDay {
			return model.ErrDuplicatePlaylist
		}
	}
	playlist.ID = f.nextID
	f.nextID++
	copied := *playlist
	f.playlists[playlist.ID] = &copied
	return nil
}

func (f *fakePlaylistRepository) TransitionToProcessing(id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[id]
	if !ok || !playlist.EligibleForReprocessing() {
		return false, nil
	}
	playlist.Status = model.StatusProcessing
	return true, nil
}

func (f *fakePlaylistRepository) TransitionToGeneratingCover(id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[id]
	if !ok || !playlist.EligibleForCoverRegeneration() {
		return false, nil
	}
	playlist.Status = model.StatusGeneratingCover
	return true, nil
}

func (f *fakePlaylistRepository) MarkReady(id int, coverPrompt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[id]
	if !ok {
		return model.ErrNotFound
	}
	playlist.Status = model.StatusReady
	if coverPrompt != "" {
		playlist.CoverPrompt = coverPrompt
	}
	return nil
}

func (f *fakePlaylistRepository) MarkCoverReady(id int, coverURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[id]
	if !ok {
		return model.ErrNotFound
	}
	playlist.Status = model.StatusReady
	if coverURL != "" {
		playlist.CoverURL = coverURL
	}
	return nil
}

func (f *fakePlaylistRepository) SetSpotifyID(id int, spotifyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[id]
	if !ok {
		return model.ErrNotFound
	}
	playlist.SpotifyID = spotifyID
	return nil
}

func (f *fakePlaylistRepository) ToggleLock(id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[id]
	if !ok {
		return false, model.ErrNotFound
	}
	playlist.Locked = !playlist.Locked
	return playlist.Locked, nil
}

// add вставляет плейлист с заданным состоянием, минуя проверки Create
func (f *fakePlaylistRepository) add(playlist *model.Playlist) *model.Playlist {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist.ID = f.nextID
	f.nextID++
	copied := *playlist
	f.playlists[playlist.ID] = &copied
	return playlist
}

// fakeTrackRepository реализует model.TrackRepository в памяти
type fakeTrackRepository struct {
	recent    []model.Track
	recentErr error
}

func (f *fakeTrackRepository) GetByPlaylistID(playlistID int) ([]model.Track, error) {
	return nil, nil
}

func (f *fakeTrackRepository) GetRecentByUserID(userID int, since time.Time) ([]model.Track, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	var tracks []model.Track
	for _, track := range f.recent {
		if !track.CreatedAt.Before(since) {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

func (f *fakeTrackRepository) CreateMany(tracks []*model.Track) error {
	return nil
}

func (f *fakeTrackRepository) DeleteByPlaylistID(playlistID int) error {
	return nil
}

// fakeTokenChecker реализует TokenChecker с заранее заданным результатом
type fakeTokenChecker struct {
	err error
}

func (f *fakeTokenChecker) CheckToken(ctx context.Context, auth *model.Authentication) error {
	return f.err
}

// fakeWorkoutGateway реализует WorkoutGateway с фиксированным ответом
type fakeWorkoutGateway struct {
	workouts []model.Workout
	err      error
}

func (f *fakeWorkoutGateway) TodaysWorkouts(ctx context.Context, pref *model.Preference, day time.Time) ([]model.Workout, error) {
	return f.workouts, f.err
}

// fakeDispatcher записывает поставленные задачи
type fakeDispatcher struct {
	mu    sync.Mutex
	tasks []queue.Task
}

func (f *fakeDispatcher) Dispatch(taskType queue.TaskType, userID, playlistID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, queue.Task{Type: taskType, UserID: userID, PlaylistID: playlistID})
}

func (f *fakeDispatcher) dispatched() []queue.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.Task(nil), f.tasks...)
}

// fakeMusicService реализует MusicService, записывая вызовы
type fakeMusicService struct {
	followed   []string
	unfollowed []string
	err        error
}

func (f *fakeMusicService) FollowPlaylist(ctx context.Context, auth *model.Authentication, spotifyID string) error {
	if f.err != nil {
		return f.err
	}
	f.followed = append(f.followed, spotifyID)
	return nil
}

func (f *fakeMusicService) UnfollowPlaylist(ctx context.Context, auth *model.Authentication, spotifyID string) error {
	if f.err != nil {
		return f.err
	}
	f.unfollowed = append(f.unfollowed, spotifyID)
	return nil
}

var errFake = fmt.Errorf("fake error")
