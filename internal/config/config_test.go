package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:         "postgres://localhost:5432/runmix",
		SpotifyClientID:     "client-id",
		SpotifyClientSecret: "client-secret",
		LLMConfig: LLMConfig{
			BaseURL: "https://integrate.api.nvidia.com/v1",
			APIKey:  "llm-key",
			Model:   "test-model",
			Timeout: time.Minute,
		},
		ReconcileCron:    "*/15 * * * *",
		ReconcileTimeout: 5 * time.Minute,
		QueueSize:        256,
		WorkerCount:      4,
		HealthPort:       "8080",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing database DSN",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: true,
		},
		{
			name:    "missing spotify client ID",
			mutate:  func(c *Config) { c.SpotifyClientID = "" },
			wantErr: true,
		},
		{
			name:    "missing spotify client secret",
			mutate:  func(c *Config) { c.SpotifyClientSecret = "" },
			wantErr: true,
		},
		{
			name:    "missing LLM API key",
			mutate:  func(c *Config) { c.LLMConfig.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "missing reconcile cron",
			mutate:  func(c *Config) { c.ReconcileCron = "" },
			wantErr: true,
		},
		{
			name:    "non-positive queue size",
			mutate:  func(c *Config) { c.QueueSize = 0 },
			wantErr: true,
		},
		{
			name:    "non-positive worker count",
			mutate:  func(c *Config) { c.WorkerCount = -1 },
			wantErr: true,
		},
		{
			name:    "telegram token without chat ID",
			mutate:  func(c *Config) { c.TelegramBotToken = "token" },
			wantErr: true,
		},
		{
			name: "telegram token with chat ID",
			mutate: func(c *Config) {
				c.TelegramBotToken = "token"
				c.TelegramAdminChatID = 123456
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
