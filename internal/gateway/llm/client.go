// Package llm реализует клиент для работы с LLM API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Client представляет клиент для работы с LLM API
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	logger      *zap.Logger
	delay       time.Duration
	lastRequest time.Time
	mu          sync.Mutex
	// Метрики
	requestCount int64
	successCount int64
	errorCount   int64
}

// Config конфигурация для LLM клиента
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Delay   time.Duration
}

// TracklistRequest описывает тренировку, под которую подбирается музыка
type TracklistRequest struct {
	WorkoutName        string
	WorkoutDescription string
	DurationMinutes    int
	// Exclusions текст списка исключений; попадает в промпт как есть
	Exclusions string
}

// SuggestedTrack трек, предложенный моделью
type SuggestedTrack struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// TracklistResponse ответ модели: треки и промпт для обложки
type TracklistResponse struct {
	Tracks      []SuggestedTrack `json:"tracks"`
	CoverPrompt string           `json:"cover_prompt"`
}

// chatRequest структура запроса к LLM
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

// chatMessage сообщение в чате
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse ответ от LLM
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// imageRequest структура запроса генерации изображения
type imageRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// imageResponse ответ генерации изображения
type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// NewClient создает новый LLM клиент
func NewClient(config Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
		delay:  config.Delay,
	}
}

// GenerateTracklist подбирает треки под тренировку с учетом списка
// исключений и возвращает также промпт для обложки
func (c *Client) GenerateTracklist(ctx context.Context, request TracklistRequest) (*TracklistResponse, error) {
	c.enforceRateLimit()

	prompt := c.createTracklistPrompt(request)

	c.logger.Debug("Sending tracklist request to LLM",
		zap.String("workout", request.WorkoutName),
		zap.Int("prompt_length", len(prompt)))

	response, err := c.sendChat(ctx, tracklistSystemPrompt, prompt)
	if err != nil {
		c.incrementError()
		return nil, fmt.Errorf("failed to send request to LLM: %w", err)
	}

	tracklist, err := c.parseTracklist(response)
	if err != nil {
		c.incrementError()
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	c.incrementSuccess()
	c.logger.Info("Generated tracklist",
		zap.String("workout", request.WorkoutName),
		zap.Int("tracks_count", len(tracklist.Tracks)))

	return tracklist, nil
}

// GenerateCoverImage генерирует обложку по промпту и возвращает URL
func (c *Client) GenerateCoverImage(ctx context.Context, prompt string) (string, error) {
	c.enforceRateLimit()

	request := imageRequest{
		Prompt: prompt,
		N:      1,
		Size:   "512x512",
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.incrementError()
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.incrementError()
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.incrementError()
		return "", fmt.Errorf("image API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response imageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		c.incrementError()
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(response.Data) == 0 || response.Data[0].URL == "" {
		c.incrementError()
		return "", fmt.Errorf("no image in response")
	}

	c.incrementSuccess()
	return response.Data[0].URL, nil
}

// GetMetrics возвращает метрики LLM клиента
func (c *Client) GetMetrics() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]interface{}{
		"total_requests":      c.requestCount,
		"successful_requests": c.successCount,
		"failed_requests":     c.errorCount,
		"delay_ms":            c.delay.Milliseconds(),
	}
}

const tracklistSystemPrompt = "You are a workout music curator. Given a workout, respond with ONLY a valid JSON object in this exact format:\n\n{\"tracks\": [{\"artist\": \"NAME\", \"title\": \"NAME\"}], \"cover_prompt\": \"short description of a playlist cover image\"}\n\nCRITICAL: Return ONLY valid JSON with standard ASCII characters. No explanations, no markdown, no code blocks."

// createTracklistPrompt создает промпт подбора треков; список исключений
// добавляется в конец и служит защитой от повторов между циклами
func (c *Client) createTracklistPrompt(request TracklistRequest) string {
	targetTracks := request.DurationMinutes / 4
	if targetTracks < 8 {
		targetTracks = 8
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Pick %d real, well-known tracks for this workout.\n\n", targetTracks)
	fmt.Fprintf(&sb, "Workout: %s\n", request.WorkoutName)
	if request.WorkoutDescription != "" {
		fmt.Fprintf(&sb, "Description: %s\n", request.WorkoutDescription)
	}
	if request.DurationMinutes > 0 {
		fmt.Fprintf(&sb, "Duration: %d minutes\n", request.DurationMinutes)
	}
	sb.WriteString("\nMatch the energy of the tracks to the workout intensity. Also produce a cover_prompt describing artwork for this playlist.\n")

	if request.Exclusions != "" {
		sb.WriteString("\n")
		sb.WriteString(request.Exclusions)
		sb.WriteString("\n")
	}

	return sb.String()
}

// sendChat отправляет запрос к chat completions API
func (c *Client) sendChat(ctx context.Context, system, user string) (string, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.6,
		TopP:        0.9,
		MaxTokens:   4096,
		Stream:      false,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	return response.Choices[0].Message.Content, nil
}

// parseTracklist извлекает JSON объект из ответа модели
func (c *Client) parseTracklist(response string) (*TracklistResponse, error) {
	cleaned := response

	// Убираем markdown блоки ```json
	if start := strings.Index(cleaned, "```json"); start != -1 {
		end := strings.LastIndex(cleaned, "```")
		if end > start+7 {
			cleaned = cleaned[start+7 : end]
		}
	}

	// Ищем последний валидный JSON объект
	lastBrace := strings.LastIndex(cleaned, "}")
	if lastBrace != -1 {
		braceCount := 0
		startBrace := -1
		for i := lastBrace; i >= 0; i-- {
			switch cleaned[i] {
			case '}':
				braceCount++
			case '{':
				braceCount--
				if braceCount == 0 {
					startBrace = i
				}
			}
			if startBrace != -1 {
				break
			}
		}

		if startBrace != -1 {
			cleaned = cleaned[startBrace : lastBrace+1]
		}
	}

	var tracklist TracklistResponse
	if err := json.Unmarshal([]byte(cleaned), &tracklist); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracklist: %w", err)
	}

	if len(tracklist.Tracks) == 0 {
		return nil, fmt.Errorf("no tracks in LLM response")
	}

	return &tracklist, nil
}

// enforceRateLimit применяет задержку между запросами
func (c *Client) enforceRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if !c.lastRequest.IsZero() {
		elapsed := now.Sub(c.lastRequest)
		if elapsed < c.delay {
			sleepDuration := c.delay - elapsed
			c.logger.Debug("Rate limiting: sleeping",
				zap.Duration("sleep_duration", sleepDuration))
			time.Sleep(sleepDuration)
		}
	}

	c.lastRequest = time.Now()
	c.requestCount++
}

// incrementSuccess увеличивает счетчик успешных запросов
func (c *Client) incrementSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successCount++
}

// incrementError увеличивает счетчик неудачных запросов
func (c *Client) incrementError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCount++
}
