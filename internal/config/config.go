// Package config содержит загрузку и валидацию конфигурации.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config представляет конфигурацию приложения
type Config struct {
	// Database
	DatabaseURL string

	// Spotify
	SpotifyClientID     string
	SpotifyClientSecret string

	// LLM
	LLMConfig LLMConfig

	// Telegram (уведомления админа, опционально)
	TelegramBotToken    string
	TelegramAdminChatID int64

	// Reconciliation
	ReconcileCron    string
	ReconcileTimeout time.Duration

	// Dispatch
	QueueSize   int
	WorkerCount int

	// Calendar
	CalendarConfig CalendarConfig

	// Health
	HealthPort         string
	HealthCheckEnabled bool

	// Logging
	LogLevel string

	// Timezone по умолчанию, если у пользователя не задана
	Timezone string

	// App Data Directory
	AppDataDir string
}

// LLMConfig представляет конфигурацию LLM клиента
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Delay   time.Duration
}

// CalendarConfig представляет конфигурацию календарных провайдеров
type CalendarConfig struct {
	IntervalsBaseURL     string
	TrainingPeaksBaseURL string
	HTTPClientConfig     HTTPClientConfig
	RetryConfig          RetryConfig
}

// HTTPClientConfig представляет конфигурацию HTTP клиента
type HTTPClientConfig struct {
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	DisableKeepAlives     bool
}

// RetryConfig представляет конфигурацию retry механизма
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл если он существует
	if err := godotenv.Load(); err != nil {
		// Игнорируем ошибку если файл не найден
	}

	config := &Config{
		DatabaseURL:         getEnv("DB_DSN", ""),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		LLMConfig: LLMConfig{
			BaseURL: getEnv("LLM_BASE_URL", "https://integrate.api.nvidia.com/v1"),
			APIKey:  getEnv("LLM_API_KEY", ""),
			Model:   getEnv("LLM_MODEL", "qwen/qwen2.5-7b-instruct"),
			Timeout: getEnvDuration("LLM_TIMEOUT", 2*time.Minute),
			Delay:   getEnvDuration("LLM_REQUEST_DELAY", 2*time.Second),
		},
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID: getEnvInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
		ReconcileCron:       getEnv("RECONCILE_CRON", "*/15 * * * *"),
		ReconcileTimeout:    getEnvDuration("RECONCILE_TIMEOUT", 5*time.Minute),
		QueueSize:           getEnvInt("QUEUE_SIZE", 256),
		WorkerCount:         getEnvInt("WORKER_COUNT", 4),
		CalendarConfig: CalendarConfig{
			IntervalsBaseURL:     getEnv("INTERVALS_BASE_URL", "https://intervals.icu"),
			TrainingPeaksBaseURL: getEnv("TRAININGPEAKS_BASE_URL", "https://api.trainingpeaks.com"),
			HTTPClientConfig: HTTPClientConfig{
				MaxIdleConns:          getEnvInt("CALENDAR_MAX_IDLE_CONNS", 100),
				MaxIdleConnsPerHost:   getEnvInt("CALENDAR_MAX_IDLE_CONNS_PER_HOST", 10),
				IdleConnTimeout:       getEnvDuration("CALENDAR_IDLE_CONN_TIMEOUT", 90*time.Second),
				TLSHandshakeTimeout:   getEnvDuration("CALENDAR_TLS_HANDSHAKE_TIMEOUT", 10*time.Second),
				ResponseHeaderTimeout: getEnvDuration("CALENDAR_RESPONSE_HEADER_TIMEOUT", 30*time.Second),
				DisableKeepAlives:     getEnvBool("CALENDAR_DISABLE_KEEP_ALIVES", false),
			},
			RetryConfig: RetryConfig{
				MaxRetries:        getEnvInt("CALENDAR_MAX_RETRIES", 3),
				InitialDelay:      getEnvDuration("CALENDAR_INITIAL_DELAY", 1*time.Second),
				MaxDelay:          getEnvDuration("CALENDAR_MAX_DELAY", 30*time.Second),
				BackoffMultiplier: getEnvFloat("CALENDAR_BACKOFF_MULTIPLIER", 2.0),
			},
		},
		HealthPort:         getEnv("HEALTH_PORT", "8080"),
		HealthCheckEnabled: getEnvBool("HEALTH_CHECK_ENABLED", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Timezone:           getEnv("TIMEZONE", "UTC"),
		AppDataDir:         getEnv("APP_DATA_DIR", "./data"),
	}

	// Валидация обязательных полей
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.SpotifyClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required")
	}

	if c.SpotifyClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required")
	}

	if c.LLMConfig.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}

	if c.ReconcileCron == "" {
		return fmt.Errorf("RECONCILE_CRON is required")
	}

	if c.QueueSize <= 0 {
		return fmt.Errorf("QUEUE_SIZE must be positive")
	}

	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}

	if c.TelegramBotToken != "" && c.TelegramAdminChatID == 0 {
		return fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is required when TELEGRAM_BOT_TOKEN is provided")
	}

	return nil
}

// GetAppDataDir возвращает директорию данных приложения
func (c *Config) GetAppDataDir() string {
	return c.AppDataDir
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt64 получает переменную окружения как int64
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как time.Duration
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
