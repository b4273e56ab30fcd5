package service

import (
	"context"
	"testing"
	"time"

	"runmix/internal/model"
	"runmix/internal/queue"

	"go.uber.org/zap"
)

// testReconciler собирает согласователь с фейковыми зависимостями
func testReconciler(users *fakeUserRepository, playlists *fakePlaylistRepository, gateway *fakeWorkoutGateway, dispatcher *fakeDispatcher) *Reconciler {
	logger := zap.NewNop()
	gate := NewTokenGate(&fakeTokenChecker{}, logger)
	reconciler := NewReconciler(users, playlists, gate, gateway, dispatcher, logger)
	reconciler.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	return reconciler
}

func activeUser(users *fakeUserRepository, userID int) {
	users.activeRequests[userID] = true
	users.prefs[userID] = &model.Preference{
		UserID:   userID,
		Provider: model.CalendarProviderIntervals,
		Timezone: "UTC",
	}
	users.auths[userID] = &model.Authentication{
		UserID:   userID,
		Provider: model.ProviderSpotify,
	}
}

func TestReconciler_CreatesPlaylistAndDispatches(t *testing.T) {
	users := newFakeUserRepository()
	playlists := newFakePlaylistRepository()
	dispatcher := &fakeDispatcher{}
	gateway := &fakeWorkoutGateway{workouts: []model.Workout{
		{Name: "Morning Run", Description: "easy run", DurationMinutes: 45},
	}}
	activeUser(users, 1)

	reconciler := testReconciler(users, playlists, gateway, dispatcher)

	if err := reconciler.Reconcile(context.Background(), 1); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	playlist, _ := playlists.Find(1, "Morning Run", "2026-08-29")
	if playlist == nil {
		t.Fatal("playlist was not created")
	}
	if playlist.Status != model.StatusProcessing {
		t.Errorf("playlist status = %s, want %s", playlist.Status, model.StatusProcessing)
	}
	if playlist.WorkoutDuration != 45 {
		t.Errorf("playlist workout duration = %d, want 45", playlist.WorkoutDuration)
	}

	tasks := dispatcher.dispatched()
	if len(tasks) != 1 {
		t.Fatalf("dispatched %d tasks, want 1", len(tasks))
	}
	if tasks[0].Type != queue.TaskTypeGeneratePlaylist {
		t.Errorf("task type = %s, want %s", tasks[0].Type, queue.TaskTypeGeneratePlaylist)
	}
	if tasks[0].PlaylistID != playlist.ID {
		t.Errorf("task playlist ID = %d, want %d", tasks[0].PlaylistID, playlist.ID)
	}
}

func TestReconciler_CreatesPlaylistPerWorkout(t *testing.T) {
	users := newFakeUserRepository()
	playlists := newFakePlaylistRepository()
	dispatcher := &fakeDispatcher{}
	gateway := &fakeWorkoutGateway{workouts: []model.Workout{
		{Name: "Run A"},
		{Name: "Run B"},
	}}
	activeUser(users, 1)

	reconciler := testReconciler(users, playlists, gateway, dispatcher)

	if err := reconciler.Reconcile(context.Background(), 1); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	for _, name := range []string{"Run A", "Run B"} {
		playlist, _ := playlists.Find(1, name, "2026-08-29")
		if playlist == nil {
			t.Errorf("playlist for %q was not created", name)
			continue
		}
		if playlist.Status != model.StatusProcessing {
			t.Errorf("playlist %q status = %s, want %s", name, playlist.Status, model.StatusProcessing)
		}
	}

	if tasks := dispatcher.dispatched(); len(tasks) != 2 {
		t.Errorf("dispatched %d tasks, want 2", len(tasks))
	}
}

func TestReconciler_IdempotentForBusyPlaylist(t *testing.T) {
	tests := []struct {
		name   string
		status model.PlaylistStatus
		locked bool
	}{
		{name: "processing playlist is skipped", status: model.StatusProcessing},
		{name: "generating cover playlist is skipped", status: model.StatusGeneratingCover},
		{name: "locked playlist is skipped", status: model.StatusReady, locked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepository()
			playlists := newFakePlaylistRepository()
			dispatcher := &fakeDispatcher{}
			gateway := &fakeWorkoutGateway{workouts: []model.Workout{{Name: "Intervals"}}}
			activeUser(users, 1)

			playlists.add(&model.Playlist{
				UserID:      1,
				WorkoutName: "Intervals",
				WorkoutDay:  "2026-08-29",
				Status:      tt.status,
				Locked:      tt.locked,
			})

			reconciler := testReconciler(users, playlists, gateway, dispatcher)

			if err := reconciler.Reconcile(context.Background(), 1); err != nil {
				t.Fatalf("Reconcile() error = %v", err)
			}

			if tasks := dispatcher.dispatched(); len(tasks) != 0 {
				t.Errorf("dispatched %d tasks, want 0", len(tasks))
			}
		})
	}
}

func TestReconciler_ReprocessesReadyPlaylist(t *testing.T) {
	users := newFakeUserRepository()
	playlists := newFakePlaylistRepository()
	dispatcher := &fakeDispatcher{}
	gateway := &fakeWorkoutGateway{workouts: []model.Workout{{Name: "Tempo"}}}
	activeUser(users, 1)

	existing := playlists.add(&model.Playlist{
		UserID:      1,
		WorkoutName: "Tempo",
		WorkoutDay:  "2026-08-29",
		Status:      model.StatusReady,
	})

	reconciler := testReconciler(users, playlists, gateway, dispatcher)

	if err := reconciler.Reconcile(context.Background(), 1); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	playlist, _ := playlists.GetByID(existing.ID)
	if playlist.Status != model.StatusProcessing {
		t.Errorf("playlist status = %s, want %s", playlist.Status, model.StatusProcessing)
	}

	tasks := dispatcher.dispatched()
	if len(tasks) != 1 || tasks[0].PlaylistID != existing.ID {
		t.Errorf("expected one dispatch for playlist %d, got %v", existing.ID, tasks)
	}
}

func TestReconciler_SkipsWithoutActiveRequest(t *testing.T) {
	users := newFakeUserRepository()
	playlists := newFakePlaylistRepository()
	dispatcher := &fakeDispatcher{}
	gateway := &fakeWorkoutGateway{workouts: []model.Workout{{Name: "Run"}}}
	activeUser(users, 1)
	users.activeRequests[1] = false

	reconciler := testReconciler(users, playlists, gateway, dispatcher)

	if err := reconciler.Reconcile(context.Background(), 1); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if tasks := dispatcher.dispatched(); len(tasks) != 0 {
		t.Errorf("dispatched %d tasks, want 0", len(tasks))
	}
}

func TestReconciler_SkipsWithoutCalendarPreference(t *testing.T) {
	users := newFakeUserRepository()
	playlists := newFakePlaylistRepository()
	dispatcher := &fakeDispatcher{}
	gateway := &fakeWorkoutGateway{workouts: []model.Workout{{Name: "Run"}}}
	users.activeRequests[1] = true

	reconciler := testReconciler(users, playlists, gateway, dispatcher)

	if err := reconciler.Reconcile(context.Background(), 1); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if tasks := dispatcher.dispatched(); len(tasks) != 0 {
		t.Errorf("dispatched %d tasks, want 0", len(tasks))
	}
}

func TestReconciler_SkipsWithInvalidToken(t *testing.T) {
	users := newFakeUserRepository()
	playlists := newFakePlaylistRepository()
	dispatcher := &fakeDispatcher{}
	gateway := &fakeWorkoutGateway{workouts: []model.Workout{{Name: "Run"}}}
	activeUser(users, 1)

	logger := zap.NewNop()
	gate := NewTokenGate(&fakeTokenChecker{err: errFake}, logger)
	reconciler := NewReconciler(users, playlists, gate, gateway, dispatcher, logger)

	if err := reconciler.Reconcile(context.Background(), 1); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if tasks := dispatcher.dispatched(); len(tasks) != 0 {
		t.Errorf("dispatched %d tasks, want 0", len(tasks))
	}
}

func TestReconciler_RecoversFromLostCreateRace(t *testing.T) {
	users := newFakeUserRepository()
	playlists := newFakePlaylistRepository()
	dispatcher := &fakeDispatcher{}
	gateway := &fakeWorkoutGateway{workouts: []model.Workout{{Name: "Race"}}}
	activeUser(users, 1)

	reconciler := testReconciler(users, playlists, gateway, dispatcher)

	// Конкурент успевает создать запись между Find и Create
	winner := playlists.add(&model.Playlist{
		UserID:      1,
		WorkoutName: "Race",
		WorkoutDay:  "2026-08-29",
		Status:      model.StatusProcessing,
	})
	playlists.findMisses = 1

	if err := reconciler.reconcileWorkout(1, model.Workout{Name: "Race"}, "2026-08-29"); err != nil {
		t.Fatalf("reconcileWorkout() error = %v", err)
	}

	// Запись уже в processing, проигравший не должен ставить задачу
	playlist, _ := playlists.GetByID(winner.ID)
	if playlist.Status != model.StatusProcessing {
		t.Errorf("playlist status = %s, want %s", playlist.Status, model.StatusProcessing)
	}
}

func TestReconciler_UsesUserTimezoneForDay(t *testing.T) {
	users := newFakeUserRepository()
	playlists := newFakePlaylistRepository()
	dispatcher := &fakeDispatcher{}
	gateway := &fakeWorkoutGateway{workouts: []model.Workout{{Name: "Night Ride"}}}
	activeUser(users, 1)
	// UTC 23:30 уже следующий день в Окленде
	users.prefs[1].Timezone = "Pacific/Auckland"

	reconciler := testReconciler(users, playlists, gateway, dispatcher)
	reconciler.now = func() time.Time {
		return time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	}

	if err := reconciler.Reconcile(context.Background(), 1); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if playlist, _ := playlists.Find(1, "Night Ride", "2026-08-30"); playlist == nil {
		t.Error("playlist was not keyed to the user's local day")
	}
}
