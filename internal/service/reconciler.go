// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"runmix/internal/model"
	"runmix/internal/queue"

	"go.uber.org/zap"
)

// WorkoutGateway определяет интерфейс получения тренировок из календаря
type WorkoutGateway interface {
	TodaysWorkouts(ctx context.Context, pref *model.Preference, day time.Time) ([]model.Workout, error)
}

// TaskDispatcher определяет интерфейс постановки фоновых задач
type TaskDispatcher interface {
	Dispatch(taskType queue.TaskType, userID, playlistID int)
}

// Reconciler согласует плейлисты пользователя с тренировками дня.
// Согласование идемпотентно: повторный запуск для того же дня не
// создает дублей и не трогает плейлисты, уже находящиеся в работе.
type Reconciler struct {
	users      model.UserRepository
	playlists  model.PlaylistRepository
	gate       *TokenGate
	gateway    WorkoutGateway
	dispatcher TaskDispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewReconciler создает новый согласователь плейлистов
func NewReconciler(
	users model.UserRepository,
	playlists model.PlaylistRepository,
	gate *TokenGate,
	gateway WorkoutGateway,
	dispatcher TaskDispatcher,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		users:      users,
		playlists:  playlists,
		gate:       gate,
		gateway:    gateway,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Reconcile выполняет цикл согласования для одного пользователя.
// Невыполненные предусловия (нет активного запроса, нет настроек
// календаря, непригодный токен) молча завершают цикл без ошибки.
func (r *Reconciler) Reconcile(ctx context.Context, userID int) error {
	active, err := r.users.HasActiveMusicRequest(userID)
	if err != nil {
		return fmt.Errorf("failed to check music request: %w", err)
	}
	if !active {
		r.logger.Debug("User has no active music request, skipping",
			zap.Int("user_id", userID))
		return nil
	}

	pref, err := r.users.GetPreference(userID)
	if err != nil {
		return fmt.Errorf("failed to load preference: %w", err)
	}
	if pref == nil || !pref.Provider.IsValid() {
		r.logger.Debug("User has no calendar configured, skipping",
			zap.Int("user_id", userID))
		return nil
	}

	auth, err := r.users.GetAuthentication(userID, model.ProviderSpotify)
	if err != nil {
		return fmt.Errorf("failed to load spotify authentication: %w", err)
	}
	if !r.gate.IsValid(ctx, auth) {
		r.logger.Debug("User spotify token is not usable, skipping",
			zap.Int("user_id", userID))
		return nil
	}

	day := r.localDay(pref)
	workouts, err := r.gateway.TodaysWorkouts(ctx, pref, day)
	if err != nil {
		return fmt.Errorf("failed to fetch workouts: %w", err)
	}

	if len(workouts) == 0 {
		r.logger.Debug("No workouts scheduled for today",
			zap.Int("user_id", userID),
			zap.String("day", day.Format("2006-01-02")))
		return nil
	}

	workoutDay := day.Format("2006-01-02")
	for _, workout := range workouts {
		if err := r.reconcileWorkout(userID, workout, workoutDay); err != nil {
			r.logger.Error("Failed to reconcile workout",
				zap.Int("user_id", userID),
				zap.String("workout", workout.Name),
				zap.String("day", workoutDay),
				zap.Error(err))
		}
	}

	return nil
}

// reconcileWorkout приводит один плейлист в соответствие тренировке.
// Проигравший гонку создания перечитывает существующую запись и
// продолжает как с найденной.
func (r *Reconciler) reconcileWorkout(userID int, workout model.Workout, workoutDay string) error {
	playlist, err := r.playlists.Find(userID, workout.Name, workoutDay)
	if err != nil {
		return fmt.Errorf("failed to find playlist: %w", err)
	}

	if playlist == nil {
		playlist = &model.Playlist{
			UserID:             userID,
			WorkoutName:        workout.Name,
			WorkoutDescription: workout.Description,
			WorkoutDuration:    workout.DurationMinutes,
			WorkoutDay:         workoutDay,
			Status:             model.StatusProcessing,
		}

		err = r.playlists.Create(playlist)
		if err == nil {
			r.logger.Info("Created playlist for workout",
				zap.Int("user_id", userID),
				zap.Int("playlist_id", playlist.ID),
				zap.String("workout", workout.Name),
				zap.String("day", workoutDay))

			r.dispatcher.Dispatch(queue.TaskTypeGeneratePlaylist, userID, playlist.ID)
			return nil
		}
		if !errors.Is(err, model.ErrDuplicatePlaylist) {
			return fmt.Errorf("failed to create playlist: %w", err)
		}

		// Гонка создания проиграна, запись уже существует
		playlist, err = r.playlists.Find(userID, workout.Name, workoutDay)
		if err != nil {
			return fmt.Errorf("failed to re-read playlist after duplicate: %w", err)
		}
		if playlist == nil {
			return fmt.Errorf("playlist disappeared after duplicate create")
		}
	}

	ok, err := r.playlists.TransitionToProcessing(playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to transition playlist: %w", err)
	}
	if !ok {
		r.logger.Debug("Playlist not eligible for reprocessing, skipping",
			zap.Int("playlist_id", playlist.ID),
			zap.String("status", playlist.Status.String()),
			zap.Bool("locked", playlist.Locked))
		return nil
	}

	r.dispatcher.Dispatch(queue.TaskTypeGeneratePlaylist, userID, playlist.ID)
	return nil
}

// localDay возвращает текущий момент в часовом поясе пользователя;
// при неизвестном поясе используется UTC
func (r *Reconciler) localDay(pref *model.Preference) time.Time {
	loc, err := time.LoadLocation(pref.Timezone)
	if err != nil {
		r.logger.Warn("Unknown timezone in preference, falling back to UTC",
			zap.Int("user_id", pref.UserID),
			zap.String("timezone", pref.Timezone))
		loc = time.UTC
	}
	return r.now().In(loc)
}
