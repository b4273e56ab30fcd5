// Package calendar реализует шлюз к внешним тренировочным календарям.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPClient представляет HTTP клиент календарных провайдеров
type HTTPClient struct {
	client *http.Client
	retry  RetryConfig
	logger *zap.Logger
}

// NewHTTPClient создает новый HTTP клиент
func NewHTTPClient(config HTTPClientConfig, retry RetryConfig, logger *zap.Logger) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		DisableKeepAlives:     config.DisableKeepAlives,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}

	return &HTTPClient{
		client: client,
		retry:  retry,
		logger: logger,
	}
}

// GetJSON выполняет GET запрос с retry и декодирует JSON ответ в out.
// Заголовки авторизации задаются через authorize.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, authorize func(*http.Request), out interface{}) error {
	return withRetry(ctx, c.logger, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if authorize != nil {
			authorize(req)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to make request: %w", err)
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil {
				c.logger.Warn("Failed to close response body", zap.Error(closeErr))
			}
		}()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}

		return nil
	})
}
