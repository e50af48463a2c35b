// Package services записывает статистику обращений к сервису перевода.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// EndpointTranslate — значение поля endpoint для записей перевода.
const EndpointTranslate = "/api/v1/translate"

// Repository сохраняет и читает записи об использовании.
type Repository interface {
	CreateUsage(ctx context.Context, usage *models.Usage) error
	ListUsageByUser(ctx context.Context, userID string) ([]*models.Usage, error)
}

// UsageService обрабатывает события из очереди usage.record.
type UsageService struct {
	repo Repository
	log  *slog.Logger
}

// NewUsageService создаёт сервис учёта использования.
func NewUsageService(repo Repository, log *slog.Logger) *UsageService {
	return &UsageService{repo: repo, log: log}
}

// Record сохраняет одну запись Usage по событию feedback.translated.
// Нечитаемые события и события удалённых пользователей отбрасываются,
// чтобы не возвращать их в очередь бесконечно.
func (s *UsageService) Record(ctx context.Context, body []byte) error {
	const op = "services.usage.Record"
	var event models.FeedbackTranslatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body, dropped", sl.Err(err))
		return nil
	}
	if event.UserID == "" {
		s.log.Warn("usage event without user id, dropped", slog.String("input_id", event.InputID))
		return nil
	}

	err := s.repo.CreateUsage(ctx, &models.Usage{
		UserID:     event.UserID,
		Endpoint:   EndpointTranslate,
		TasksCount: len(event.Tasks),
		DurationMs: event.DurationMs,
		CreatedAt:  event.CreatedAt,
	})
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn("usage event for unknown user, dropped", slog.String("user_id", event.UserID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List возвращает записи пользователя в порядке создания.
func (s *UsageService) List(ctx context.Context, userID string) ([]*models.Usage, error) {
	const op = "services.usage.List"
	res, err := s.repo.ListUsageByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
