// Package app содержит фабрику компонентов приложения.
package app

import (
	"fmt"
	"os"

	"runmix/internal/config"
	"runmix/internal/gateway/calendar"
	"runmix/internal/gateway/llm"
	"runmix/internal/gateway/spotify"
	"runmix/internal/health"
	"runmix/internal/notify"
	"runmix/internal/queue"
	"runmix/internal/service"
	"runmix/internal/storage"
	"runmix/internal/worker"

	"go.uber.org/zap"
)

// ComponentFactory создает компоненты приложения
type ComponentFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewComponentFactory создает новую фабрику компонентов
func NewComponentFactory(config *config.Config, logger *zap.Logger) *ComponentFactory {
	if config == nil {
		logger.Fatal("Config cannot be nil")
	}
	if logger == nil {
		panic("Logger cannot be nil")
	}

	return &ComponentFactory{
		config: config,
		logger: logger,
	}
}

// CreateDatabase создает подключение к базе данных
func (f *ComponentFactory) CreateDatabase() (*storage.Postgres, error) {
	if f.config.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := storage.NewPostgres(f.config.DatabaseURL, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	f.logger.Info("Database connection created successfully")
	return db, nil
}

// CreateSpotifyClient создает Spotify клиент
func (f *ComponentFactory) CreateSpotifyClient() (*spotify.Client, error) {
	client, err := spotify.NewClient(f.config.SpotifyClientID, f.config.SpotifyClientSecret, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create spotify client: %w", err)
	}

	return client, nil
}

// CreateLLMClient создает LLM клиент
func (f *ComponentFactory) CreateLLMClient() *llm.Client {
	client := llm.NewClient(llm.Config{
		BaseURL: f.config.LLMConfig.BaseURL,
		APIKey:  f.config.LLMConfig.APIKey,
		Model:   f.config.LLMConfig.Model,
		Timeout: f.config.LLMConfig.Timeout,
		Delay:   f.config.LLMConfig.Delay,
	}, f.logger)

	f.logger.Info("LLM client created successfully")
	return client
}

// CreateCalendarGateway создает календарный шлюз
func (f *ComponentFactory) CreateCalendarGateway() *calendar.Gateway {
	gatewayConfig := calendar.Config{
		IntervalsBaseURL:     f.config.CalendarConfig.IntervalsBaseURL,
		TrainingPeaksBaseURL: f.config.CalendarConfig.TrainingPeaksBaseURL,
		HTTPClientConfig: calendar.HTTPClientConfig{
			MaxIdleConns:          f.config.CalendarConfig.HTTPClientConfig.MaxIdleConns,
			MaxIdleConnsPerHost:   f.config.CalendarConfig.HTTPClientConfig.MaxIdleConnsPerHost,
			IdleConnTimeout:       f.config.CalendarConfig.HTTPClientConfig.IdleConnTimeout,
			TLSHandshakeTimeout:   f.config.CalendarConfig.HTTPClientConfig.TLSHandshakeTimeout,
			ResponseHeaderTimeout: f.config.CalendarConfig.HTTPClientConfig.ResponseHeaderTimeout,
			DisableKeepAlives:     f.config.CalendarConfig.HTTPClientConfig.DisableKeepAlives,
		},
		RetryConfig: calendar.RetryConfig{
			MaxRetries:        f.config.CalendarConfig.RetryConfig.MaxRetries,
			InitialDelay:      f.config.CalendarConfig.RetryConfig.InitialDelay,
			MaxDelay:          f.config.CalendarConfig.RetryConfig.MaxDelay,
			BackoffMultiplier: f.config.CalendarConfig.RetryConfig.BackoffMultiplier,
		},
	}

	gateway := calendar.NewGateway(gatewayConfig, f.logger)
	f.logger.Info("Calendar gateway created successfully")
	return gateway
}

// CreateDispatcher создает диспетчер фоновых задач
func (f *ComponentFactory) CreateDispatcher() *queue.Dispatcher {
	dispatcher := queue.NewDispatcher(f.config.QueueSize, f.config.WorkerCount, f.config.ReconcileTimeout, f.logger)
	f.logger.Info("Task dispatcher created successfully",
		zap.Int("queue_size", f.config.QueueSize),
		zap.Int("workers", f.config.WorkerCount))
	return dispatcher
}

// CreateNotifier создает Telegram уведомитель; без токена уведомления
// отключены и возвращается nil
func (f *ComponentFactory) CreateNotifier() (*notify.TelegramNotifier, error) {
	if f.config.TelegramBotToken == "" {
		f.logger.Info("Telegram notifications are disabled")
		return nil, nil
	}

	notifier, err := notify.NewTelegramNotifier(f.config.TelegramBotToken, f.config.TelegramAdminChatID, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram notifier: %w", err)
	}

	return notifier, nil
}

// CreateHealthServer создает сервер health check
func (f *ComponentFactory) CreateHealthServer(db *storage.Postgres, dispatcher *queue.Dispatcher) (*health.Server, error) {
	if !f.config.HealthCheckEnabled {
		f.logger.Info("Health check server is disabled")
		return nil, nil
	}

	if f.config.HealthPort == "" {
		return nil, fmt.Errorf("health port is required when health check is enabled")
	}

	server := health.NewServer(f.config.HealthPort, f.logger, db, dispatcher)
	f.logger.Info("Health check server created", zap.String("port", f.config.HealthPort))
	return server, nil
}

// CreateAppDataDirectory создает директорию данных приложения
func (f *ComponentFactory) CreateAppDataDirectory() error {
	dataDir := f.config.GetAppDataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		f.logger.Error("Failed to create app data directory", zap.String("dir", dataDir), zap.Error(err))
		return fmt.Errorf("failed to create app data directory: %w", err)
	}
	f.logger.Info("App data directory ready", zap.String("dir", dataDir))
	return nil
}

// CreateApp создает полный экземпляр приложения со всеми зависимостями
func (f *ComponentFactory) CreateApp() (*App, error) {
	if err := f.CreateAppDataDirectory(); err != nil {
		return nil, fmt.Errorf("failed to create app data directory: %w", err)
	}

	db, err := f.CreateDatabase()
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	spotifyClient, err := f.CreateSpotifyClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create spotify client: %w", err)
	}

	llmClient := f.CreateLLMClient()
	calendarGateway := f.CreateCalendarGateway()
	dispatcher := f.CreateDispatcher()

	notifier, err := f.CreateNotifier()
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	healthServer, err := f.CreateHealthServer(db, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("failed to create health server: %w", err)
	}

	users := db.GetUserRepository()
	playlists := db.GetPlaylistRepository()
	tracks := db.GetTrackRepository()

	tokenGate := service.NewTokenGate(spotifyClient, f.logger)
	exclusions := service.NewExclusionBuilder(tracks, f.logger)
	lifecycle := service.NewLifecycleService(playlists, tracks, f.logger)
	reconciler := service.NewReconciler(users, playlists, tokenGate, calendarGateway, dispatcher, f.logger)
	playlistService := service.NewPlaylistService(playlists, users, dispatcher, spotifyClient, f.logger)
	scheduler := service.NewCycleScheduler(reconciler, f.config.ReconcileCron, f.config.ReconcileTimeout, f.logger)

	// Уведомитель опционален; интерфейс не должен получить типизированный nil
	var failureNotifier worker.Notifier
	if notifier != nil {
		failureNotifier = notifier
	}

	dispatcher.RegisterExecutor(queue.TaskTypeGeneratePlaylist,
		worker.NewPlaylistGenerator(playlists, users, exclusions, lifecycle, llmClient, spotifyClient, failureNotifier, f.logger))
	dispatcher.RegisterExecutor(queue.TaskTypeGenerateCover,
		worker.NewCoverGenerator(playlists, lifecycle, llmClient, failureNotifier, f.logger))

	app := &App{
		config:     f.config,
		logger:     f.logger,
		db:         db,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		health:     healthServer,
		playlists:  playlistService,
	}

	f.logger.Info("Application created successfully with all dependencies")
	return app, nil
}
