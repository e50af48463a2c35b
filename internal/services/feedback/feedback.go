// Package services содержит бизнес-логику простого CRUD элементов обратной связи.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// ItemRepository определяет методы хранилища элементов.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	ListItems(ctx context.Context, filter models.ItemFilter) ([]*models.Item, error)
	GetItem(ctx context.Context, id string) (*models.Item, error)
	UpdateItem(ctx context.Context, id string, patch models.ItemPatch) (*models.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// ValidStatus сообщает, допустим ли статус элемента.
func ValidStatus(status string) bool {
	switch status {
	case models.ItemStatusPending, models.ItemStatusInProgress, models.ItemStatusResolved, models.ItemStatusClosed:
		return true
	}
	return false
}

// FeedbackService реализует CRUD элементов. Читать элементы может любой
// авторизованный пользователь, изменять и удалять только владелец.
type FeedbackService struct {
	repo ItemRepository
	log  *slog.Logger
}

// NewFeedbackService создает новый экземпляр FeedbackService.
func NewFeedbackService(repo ItemRepository, log *slog.Logger) *FeedbackService {
	return &FeedbackService{repo: repo, log: log}
}

// Create создаёт элемент. Пустая категория заменяется на general, статус всегда pending.
func (s *FeedbackService) Create(ctx context.Context, ownerID, title, description, category string) (*models.Item, error) {
	const op = "services.feedback.Create"
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("%s: title and description: %w", op, models.ErrValidation)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = models.ItemCategoryGeneral
	}

	item, err := s.repo.CreateItem(ctx, &models.Item{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Category:    category,
		Status:      models.ItemStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created feedback item", slog.String("item_id", item.ID))
	return item, nil
}

// List возвращает элементы всех пользователей с учётом фильтров category и status.
func (s *FeedbackService) List(ctx context.Context, filter models.ItemFilter) ([]*models.Item, error) {
	const op = "services.feedback.List"
	items, err := s.repo.ListItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// Get возвращает элемент по ID.
func (s *FeedbackService) Get(ctx context.Context, id string) (*models.Item, error) {
	const op = "services.feedback.Get"
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// Update применяет частичное обновление. Отсутствующий элемент даёт
// models.ErrNotFound, чужой — models.ErrForbidden.
func (s *FeedbackService) Update(ctx context.Context, id, ownerID string, patch models.ItemPatch) (*models.Item, error) {
	const op = "services.feedback.Update"
	patch.Title = strings.TrimSpace(patch.Title)
	patch.Description = strings.TrimSpace(patch.Description)
	patch.Category = strings.TrimSpace(patch.Category)
	patch.Status = strings.TrimSpace(patch.Status)
	if patch.Status != "" && !ValidStatus(patch.Status) {
		return nil, fmt.Errorf("%s: status %q: %w", op, patch.Status, models.ErrValidation)
	}

	if err := s.checkOwner(ctx, id, ownerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	item, err := s.repo.UpdateItem(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// Delete удаляет элемент владельца.
func (s *FeedbackService) Delete(ctx context.Context, id, ownerID string) error {
	const op = "services.feedback.Delete"
	if err := s.checkOwner(ctx, id, ownerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("deleted feedback item", slog.String("item_id", id))
	return nil
}

func (s *FeedbackService) checkOwner(ctx context.Context, id, ownerID string) error {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return models.ErrForbidden
	}
	return nil
}
