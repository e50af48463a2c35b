// Package services содержит бизнес-логику управления проектами пользователя.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// ProjectRepository определяет методы для работы с проектами в хранилище.
type ProjectRepository interface {
	// CreateProject сохраняет проект и возвращает его с присвоенным ID.
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	// GetProject возвращает проект по ID.
	GetProject(ctx context.Context, id string) (*models.Project, error)
	// ListProjectsByOwner возвращает проекты владельца в порядке создания.
	ListProjectsByOwner(ctx context.Context, ownerID string) ([]*models.Project, error)
	// DeleteProject удаляет проект вместе с отзывами и задачами.
	DeleteProject(ctx context.Context, id string) error
}

// ProjectService реализует операции над проектами. Чужой проект
// неотличим от несуществующего: оба случая дают models.ErrNotFound.
type ProjectService struct {
	repo ProjectRepository
	log  *slog.Logger
}

// NewProjectService создает новый экземпляр ProjectService.
func NewProjectService(repo ProjectRepository, log *slog.Logger) *ProjectService {
	return &ProjectService{repo: repo, log: log}
}

// Create создаёт проект. Имя обрезается по краям и не может быть пустым.
func (s *ProjectService) Create(ctx context.Context, ownerID, name, description string) (*models.Project, error) {
	const op = "services.project.Create"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: name: %w", op, models.ErrValidation)
	}
	p, err := s.repo.CreateProject(ctx, &models.Project{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created project", slog.String("project_id", p.ID), slog.String("owner_id", ownerID))
	return p, nil
}

// List возвращает проекты владельца.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]*models.Project, error) {
	const op = "services.project.List"
	list, err := s.repo.ListProjectsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Get возвращает проект, если он принадлежит ownerID.
func (s *ProjectService) Get(ctx context.Context, id, ownerID string) (*models.Project, error) {
	const op = "services.project.Get"
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.OwnerID != ownerID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return p, nil
}

// Delete удаляет проект владельца.
func (s *ProjectService) Delete(ctx context.Context, id, ownerID string) error {
	const op = "services.project.Delete"
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("deleted project", slog.String("project_id", id))
	return nil
}
