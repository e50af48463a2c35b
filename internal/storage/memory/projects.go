package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// CreateProject сохраняет проект, владелец должен существовать.
func (s *Storage) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	const op = "storage.memory.CreateProject"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[project.OwnerID]; !ok {
		return nil, notFound(op)
	}
	p := *project
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = &p
	s.projectOrder = append(s.projectOrder, p.ID)

	out := p
	return &out, nil
}

// GetProject возвращает проект по идентификатору.
func (s *Storage) GetProject(ctx context.Context, id string) (*models.Project, error) {
	const op = "storage.memory.GetProject"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, notFound(op)
	}
	out := *p
	return &out, nil
}

// ListProjectsByOwner возвращает проекты владельца в порядке создания.
func (s *Storage) ListProjectsByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	const op = "storage.memory.ListProjectsByOwner"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*models.Project, 0)
	for _, id := range s.projectOrder {
		p := s.projects[id]
		if p.OwnerID == ownerID {
			out := *p
			res = append(res, &out)
		}
	}
	return res, nil
}

// DeleteProject удаляет проект вместе с отзывами и задачами.
func (s *Storage) DeleteProject(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteProject"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return notFound(op)
	}
	s.deleteProjectLocked(id)
	return nil
}

// deleteProjectLocked вызывается под s.mu.
func (s *Storage) deleteProjectLocked(id string) {
	delete(s.projects, id)
	s.projectOrder = without(s.projectOrder, id)

	kept := s.inputOrder[:0]
	for _, inputID := range s.inputOrder {
		if s.inputs[inputID].ProjectID != id {
			kept = append(kept, inputID)
			continue
		}
		for _, taskID := range s.tasksByInput[inputID] {
			delete(s.tasks, taskID)
		}
		delete(s.tasksByInput, inputID)
		delete(s.inputs, inputID)
	}
	s.inputOrder = kept
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
