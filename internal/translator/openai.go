// Package translator переводит текст отзыва клиента в список задач через
// OpenAI-совместимый API chat completions.
package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/magabrotheeeer/feedbackfix/internal/config"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

const (
	temperature = 0.7
	maxTokens   = 1000
)

// ErrMalformedResponse — ответ модели не соответствует ожидаемому формату.
var ErrMalformedResponse = errors.New("malformed translator response")

const systemPrompt = `You are an expert Art Director and Senior Designer with 15+ years of experience. Your job is to translate vague, unclear client feedback into specific, actionable design tasks for junior designers.

When you receive feedback, you should:
1. Identify the core intent behind the vague language
2. Break it down into 2-5 specific, actionable tasks
3. Use precise design terminology
4. Include specific measurements or percentages when relevant
5. Reference concrete design elements (colors, typography, spacing, etc.)

You MUST respond ONLY in valid JSON format with this exact structure:
{
  "tasks": [
    {
      "task": "Specific actionable task description",
      "estimated_time_minutes": 15,
      "difficulty_level": "easy"
    }
  ]
}

Difficulty levels: "easy", "medium", "hard"
Time estimates: realistic minutes (5-120)`

// Observer получает длительность и результат каждого обращения к модели.
type Observer interface {
	ObserveTranslation(model, result string, d time.Duration)
}

// Client — клиент сервиса перевода.
type Client struct {
	api           *openai.Client
	model         string
	fallbackModel string
	observer      Observer
	log           *slog.Logger
}

// New создаёт клиент. observer может быть nil.
func New(cfg config.Translator, observer Observer, log *slog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		api:           openai.NewClientWithConfig(apiCfg),
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		observer:      observer,
		log:           log,
	}
}

// Translate отправляет текст модели и разбирает список задач из ответа.
// При HTTP 429 делается одна попытка с резервной моделью.
func (c *Client) Translate(ctx context.Context, text string) ([]models.TaskDraft, error) {
	const op = "translator.Translate"
	content, err := c.complete(ctx, c.model, text)
	if isRateLimited(err) && c.fallbackModel != "" && c.fallbackModel != c.model {
		c.log.Warn("rate limited on primary model, trying fallback",
			slog.String("model", c.model), slog.String("fallback", c.fallbackModel))
		content, err = c.complete(ctx, c.fallbackModel, text)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	drafts, err := parseTasks(content)
	if err != nil {
		c.log.Error("failed to parse translator response", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return drafts, nil
}

func (c *Client) complete(ctx context.Context, model, text string) (string, error) {
	started := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	result := "ok"
	if err != nil {
		result = "error"
	}
	if c.observer != nil {
		c.observer.ObserveTranslation(model, result, time.Since(started))
	}
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices: %w", ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

type taskPayload struct {
	Task                 string `json:"task"`
	Description          string `json:"description"`
	EstimatedTimeMinutes *int   `json:"estimated_time_minutes"`
	DifficultyLevel      string `json:"difficulty_level"`
}

type responsePayload struct {
	Tasks *[]taskPayload `json:"tasks"`
}

// parseTasks разбирает JSON ответа. Отсутствие поля tasks или пустое описание
// задачи считаются ошибкой, пустой список допустим.
func parseTasks(content string) ([]models.TaskDraft, error) {
	var payload responsePayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Tasks == nil {
		return nil, fmt.Errorf("missing tasks: %w", ErrMalformedResponse)
	}

	drafts := make([]models.TaskDraft, 0, len(*payload.Tasks))
	for i, t := range *payload.Tasks {
		description := t.Task
		if description == "" {
			description = t.Description
		}
		if strings.TrimSpace(description) == "" {
			return nil, fmt.Errorf("task %d without description: %w", i, ErrMalformedResponse)
		}
		drafts = append(drafts, models.TaskDraft{
			Description:          description,
			EstimatedTimeMinutes: t.EstimatedTimeMinutes,
			DifficultyLevel:      difficulty(t.DifficultyLevel),
		})
	}
	return drafts, nil
}

func difficulty(level string) string {
	switch level = strings.ToLower(strings.TrimSpace(level)); level {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return level
	default:
		return ""
	}
}
