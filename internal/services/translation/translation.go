// Package services реализует конвейер перевода отзыва в задачи и операции
// над сгенерированными задачами.
//
// Порядок шагов Translate:
//
//  1. проверка подписки;
//  2. проверка текста и владения проектом;
//  3. сохранение FeedbackInput с исходным текстом;
//  4. вызов сервиса перевода с таймаутом;
//  5. сохранение задач в порядке ответа;
//  6. публикация события feedback.translated.
//
// Ошибка на шаге 4 оставляет FeedbackInput без задач.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/feedbackfix/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// Repository описывает хранилище проектов, отзывов и задач.
type Repository interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateFeedbackInput(ctx context.Context, input *models.FeedbackInput) (*models.FeedbackInput, error)
	GetFeedbackInput(ctx context.Context, id string) (*models.FeedbackInput, error)
	ListFeedbackInputsByProject(ctx context.Context, projectID string) ([]*models.FeedbackInput, error)
	CreateTasks(ctx context.Context, inputID string, drafts []models.TaskDraft) ([]*models.Task, error)
	ListTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error)
	ListTasksByInput(ctx context.Context, inputID string) ([]*models.Task, error)
	GetTaskOwner(ctx context.Context, taskID string) (string, error)
	ToggleTask(ctx context.Context, taskID string) (*models.Task, error)
}

// Translator превращает текст отзыва в упорядоченный список задач.
type Translator interface {
	Translate(ctx context.Context, text string) ([]models.TaskDraft, error)
}

// Gate проверяет оплаченную подписку.
type Gate interface {
	RequireActive(ctx context.Context, userID string) (*models.User, error)
}

// Publisher публикует доменные события.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// TranslationService реализует конвейер перевода и работу с задачами.
type TranslationService struct {
	repo       Repository
	translator Translator
	gate       Gate
	publisher  Publisher
	timeout    time.Duration
	log        *slog.Logger
}

// NewTranslationService создаёт сервис. publisher может быть nil, тогда события не публикуются.
func NewTranslationService(repo Repository, translator Translator, gate Gate, publisher Publisher,
	timeout time.Duration, log *slog.Logger) *TranslationService {
	return &TranslationService{
		repo:       repo,
		translator: translator,
		gate:       gate,
		publisher:  publisher,
		timeout:    timeout,
		log:        log,
	}
}

// Translate переводит текст отзыва в задачи проекта projectID.
func (s *TranslationService) Translate(ctx context.Context, userID, projectID, text string) (*models.Translation, error) {
	const op = "services.translation.Translate"
	log := s.log.With(sl.Op(op), slog.String("user_id", userID), slog.String("project_id", projectID))

	user, err := s.gate.RequireActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: feedback_text: %w", op, models.ErrValidation)
	}
	project, err := s.ownedProject(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	input, err := s.repo.CreateFeedbackInput(ctx, &models.FeedbackInput{
		ProjectID:    project.ID,
		OriginalText: text,
		SourceType:   models.SourceText,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	started := time.Now()
	drafts, err := s.callTranslator(ctx, text)
	if err != nil {
		log.Error("translation failed, feedback input kept without tasks",
			slog.String("input_id", input.ID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	elapsed := time.Since(started)

	tasks, err := s.repo.CreateTasks(ctx, input.ID, drafts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("feedback translated", slog.String("input_id", input.ID),
		slog.Int("tasks", len(tasks)), slog.Duration("duration", elapsed))

	s.publish(ctx, log, user, project, input, tasks, elapsed)

	return &models.Translation{FeedbackInput: input, Tasks: tasks}, nil
}

func (s *TranslationService) callTranslator(ctx context.Context, text string) ([]models.TaskDraft, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	drafts, err := s.translator.Translate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTranslation, err)
	}
	for i, d := range drafts {
		if strings.TrimSpace(d.Description) == "" {
			return nil, fmt.Errorf("%w: task %d has empty description", models.ErrTranslation, i)
		}
	}
	return drafts, nil
}

func (s *TranslationService) publish(ctx context.Context, log *slog.Logger, user *models.User, project *models.Project,
	input *models.FeedbackInput, tasks []*models.Task, elapsed time.Duration) {
	if s.publisher == nil {
		return
	}
	descriptions := make([]string, 0, len(tasks))
	for _, t := range tasks {
		descriptions = append(descriptions, t.TaskDescription)
	}
	event := models.FeedbackTranslatedEvent{
		UserID:      user.ID,
		Email:       user.Email,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		InputID:     input.ID,
		Tasks:       descriptions,
		DurationMs:  elapsed.Milliseconds(),
		CreatedAt:   input.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingFeedbackTranslated, event); err != nil {
		log.Warn("failed to publish feedback.translated", sl.Err(err))
	}
}

// ownedProject возвращает проект пользователя, чужой и несуществующий дают models.ErrNotFound.
func (s *TranslationService) ownedProject(ctx context.Context, projectID, userID string) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, models.ErrNotFound
	}
	return p, nil
}

// ListTasksForProject возвращает задачи проекта в порядке создания отзывов и position.
func (s *TranslationService) ListTasksForProject(ctx context.Context, projectID, userID string) ([]*models.Task, error) {
	const op = "services.translation.ListTasksForProject"
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tasks, err := s.repo.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// ListFeedbackInputs возвращает отзывы проекта пользователя.
func (s *TranslationService) ListFeedbackInputs(ctx context.Context, projectID, userID string) ([]*models.FeedbackInput, error) {
	const op = "services.translation.ListFeedbackInputs"
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	inputs, err := s.repo.ListFeedbackInputsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inputs, nil
}

// ListTasksForFeedback возвращает задачи одного отзыва.
func (s *TranslationService) ListTasksForFeedback(ctx context.Context, inputID, userID string) ([]*models.Task, error) {
	const op = "services.translation.ListTasksForFeedback"
	input, err := s.repo.GetFeedbackInput(ctx, inputID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.ownedProject(ctx, input.ProjectID, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tasks, err := s.repo.ListTasksByInput(ctx, inputID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// ToggleTask инвертирует признак выполнения задачи. Отсутствующая задача
// даёт models.ErrNotFound, задача чужого проекта — models.ErrForbidden.
func (s *TranslationService) ToggleTask(ctx context.Context, taskID, userID string) (*models.Task, error) {
	const op = "services.translation.ToggleTask"
	owner, err := s.repo.GetTaskOwner(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if owner != userID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	task, err := s.repo.ToggleTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}
