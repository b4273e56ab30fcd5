// Package queue реализует внутрипроцессную очередь фоновых задач генерации.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskType представляет тип фоновой задачи
type TaskType string

const (
	// TaskTypeGeneratePlaylist генерация треклиста плейлиста
	TaskTypeGeneratePlaylist TaskType = "generate_playlist"
	// TaskTypeGenerateCover генерация обложки плейлиста
	TaskTypeGenerateCover TaskType = "generate_cover"
)

// String возвращает строковое представление типа задачи
func (t TaskType) String() string {
	return string(t)
}

// Task представляет фоновую задачу генерации
type Task struct {
	ID         uuid.UUID
	Type       TaskType
	UserID     int
	PlaylistID int
	EnqueuedAt time.Time
}

// Executor определяет интерфейс для выполнения задач
type Executor interface {
	Execute(ctx context.Context, task Task) error
}

// Dispatcher распределяет задачи по пулу воркеров. Постановка задачи
// не блокирует вызывающего: при переполненной очереди задача
// отбрасывается с ошибкой в лог, плейлист остается в промежуточном
// статусе и будет подхвачен следующим циклом.
type Dispatcher struct {
	tasks       chan Task
	executors   map[TaskType]Executor
	workerCount int
	taskTimeout time.Duration
	logger      *zap.Logger
	wg          sync.WaitGroup
	cancel      context.CancelFunc
	mu          sync.RWMutex
	started     bool
}

// NewDispatcher создает новый диспетчер задач
func NewDispatcher(queueSize, workerCount int, taskTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		tasks:       make(chan Task, queueSize),
		executors:   make(map[TaskType]Executor),
		workerCount: workerCount,
		taskTimeout: taskTimeout,
		logger:      logger,
	}
}

// RegisterExecutor регистрирует исполнителя для типа задачи
func (d *Dispatcher) RegisterExecutor(taskType TaskType, executor Executor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executors[taskType] = executor
}

// Start запускает пул воркеров
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return fmt.Errorf("dispatcher already started")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(workerCtx, i)
	}

	d.started = true
	d.logger.Info("Dispatcher started",
		zap.Int("workers", d.workerCount),
		zap.Int("queue_capacity", cap(d.tasks)))

	return nil
}

// Stop останавливает пул воркеров и дожидается завершения текущих задач
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	d.cancel()
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Dispatcher stopped")
}

// Dispatch ставит задачу в очередь; возвращает управление сразу
func (d *Dispatcher) Dispatch(taskType TaskType, userID, playlistID int) {
	task := Task{
		ID:         uuid.New(),
		Type:       taskType,
		UserID:     userID,
		PlaylistID: playlistID,
		EnqueuedAt: time.Now(),
	}

	select {
	case d.tasks <- task:
		d.logger.Info("Task enqueued",
			zap.String("task_id", task.ID.String()),
			zap.String("task_type", taskType.String()),
			zap.Int("playlist_id", playlistID))
	default:
		d.logger.Error("Task queue is full, dropping task",
			zap.String("task_type", taskType.String()),
			zap.Int("playlist_id", playlistID))
	}
}

// QueueDepth возвращает текущее число задач в очереди
func (d *Dispatcher) QueueDepth() int {
	return len(d.tasks)
}

// worker обрабатывает задачи из очереди до отмены контекста
func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-d.tasks:
			d.executeTask(ctx, id, task)
		}
	}
}

// executeTask выполняет одну задачу с таймаутом
func (d *Dispatcher) executeTask(ctx context.Context, workerID int, task Task) {
	d.mu.RLock()
	executor, exists := d.executors[task.Type]
	d.mu.RUnlock()

	if !exists {
		d.logger.Error("No executor registered for task type",
			zap.String("task_type", task.Type.String()),
			zap.String("task_id", task.ID.String()))
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, d.taskTimeout)
	defer cancel()

	d.logger.Info("Executing task",
		zap.Int("worker_id", workerID),
		zap.String("task_id", task.ID.String()),
		zap.String("task_type", task.Type.String()),
		zap.Int("playlist_id", task.PlaylistID),
		zap.Duration("queue_wait", time.Since(task.EnqueuedAt)))

	startTime := time.Now()
	err := executor.Execute(taskCtx, task)
	duration := time.Since(startTime)

	if err != nil {
		d.logger.Error("Task execution failed",
			zap.String("task_id", task.ID.String()),
			zap.String("task_type", task.Type.String()),
			zap.Int("playlist_id", task.PlaylistID),
			zap.Duration("duration", duration),
			zap.Error(err))
		return
	}

	d.logger.Info("Task executed successfully",
		zap.String("task_id", task.ID.String()),
		zap.String("task_type", task.Type.String()),
		zap.Duration("duration", duration))
}
