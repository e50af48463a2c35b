package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// CreateFeedbackInput сохраняет текст отзыва, проект должен существовать.
func (s *Storage) CreateFeedbackInput(ctx context.Context, input *models.FeedbackInput) (*models.FeedbackInput, error) {
	const op = "storage.memory.CreateFeedbackInput"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[input.ProjectID]; !ok {
		return nil, notFound(op)
	}
	in := *input
	in.ID = uuid.NewString()
	in.CreatedAt = s.now()
	if in.SourceType == "" {
		in.SourceType = models.SourceText
	}
	s.inputs[in.ID] = &in
	s.inputOrder = append(s.inputOrder, in.ID)

	out := in
	return &out, nil
}

// GetFeedbackInput возвращает отзыв по идентификатору.
func (s *Storage) GetFeedbackInput(ctx context.Context, id string) (*models.FeedbackInput, error) {
	const op = "storage.memory.GetFeedbackInput"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	in, ok := s.inputs[id]
	if !ok {
		return nil, notFound(op)
	}
	out := *in
	return &out, nil
}

// CreateTasks сохраняет задачи отзыва в переданном порядке, position = индекс.
func (s *Storage) CreateTasks(ctx context.Context, inputID string, drafts []models.TaskDraft) ([]*models.Task, error) {
	const op = "storage.memory.CreateTasks"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inputs[inputID]; !ok {
		return nil, notFound(op)
	}
	now := s.now()
	res := make([]*models.Task, 0, len(drafts))
	for i, d := range drafts {
		t := &models.Task{
			ID:                   uuid.NewString(),
			InputID:              inputID,
			Position:             i,
			TaskDescription:      d.Description,
			EstimatedTimeMinutes: copyInt(d.EstimatedTimeMinutes),
			DifficultyLevel:      d.DifficultyLevel,
			CreatedAt:            now,
		}
		s.tasks[t.ID] = t
		s.tasksByInput[inputID] = append(s.tasksByInput[inputID], t.ID)
		res = append(res, copyTask(t))
	}
	return res, nil
}

// ListTasksByInput возвращает задачи отзыва по возрастанию position.
func (s *Storage) ListTasksByInput(ctx context.Context, inputID string) ([]*models.Task, error) {
	const op = "storage.memory.ListTasksByInput"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*models.Task, 0, len(s.tasksByInput[inputID]))
	for _, id := range s.tasksByInput[inputID] {
		res = append(res, copyTask(s.tasks[id]))
	}
	return res, nil
}

// ListTasksByProject возвращает задачи всех отзывов проекта: сначала по
// порядку создания отзывов, внутри отзыва по position.
func (s *Storage) ListTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	const op = "storage.memory.ListTasksByProject"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*models.Task, 0)
	for _, inputID := range s.inputOrder {
		if s.inputs[inputID].ProjectID != projectID {
			continue
		}
		for _, id := range s.tasksByInput[inputID] {
			res = append(res, copyTask(s.tasks[id]))
		}
	}
	return res, nil
}

// GetTaskOwner проходит Task → FeedbackInput → Project и возвращает владельца проекта.
func (s *Storage) GetTaskOwner(ctx context.Context, taskID string) (string, error) {
	const op = "storage.memory.GetTaskOwner"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return "", notFound(op)
	}
	in, ok := s.inputs[t.InputID]
	if !ok {
		return "", notFound(op)
	}
	p, ok := s.projects[in.ProjectID]
	if !ok {
		return "", notFound(op)
	}
	return p.OwnerID, nil
}

// ToggleTask атомарно инвертирует is_completed и возвращает обновлённую задачу.
func (s *Storage) ToggleTask(ctx context.Context, taskID string) (*models.Task, error) {
	const op = "storage.memory.ToggleTask"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, notFound(op)
	}
	t.IsCompleted = !t.IsCompleted
	if t.IsCompleted {
		now := s.now()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	return copyTask(t), nil
}

func copyTask(t *models.Task) *models.Task {
	out := *t
	out.EstimatedTimeMinutes = copyInt(t.EstimatedTimeMinutes)
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		out.CompletedAt = &c
	}
	return &out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ListFeedbackInputsByProject возвращает отзывы проекта в порядке создания.
func (s *Storage) ListFeedbackInputsByProject(ctx context.Context, projectID string) ([]*models.FeedbackInput, error) {
	const op = "storage.memory.ListFeedbackInputsByProject"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*models.FeedbackInput, 0)
	for _, id := range s.inputOrder {
		if in := s.inputs[id]; in.ProjectID == projectID {
			out := *in
			res = append(res, &out)
		}
	}
	return res, nil
}
