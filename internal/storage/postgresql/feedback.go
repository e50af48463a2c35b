package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

const taskColumns = `t.id, t.input_id, t.position, t.task_description, t.estimated_time_minutes,
		t.difficulty_level, t.is_completed, t.created_at, t.completed_at`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	t := &models.Task{}
	var (
		estimated  sql.NullInt32
		difficulty sql.NullString
		completed  sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.InputID, &t.Position, &t.TaskDescription, &estimated,
		&difficulty, &t.IsCompleted, &t.CreatedAt, &completed); err != nil {
		return nil, err
	}
	if estimated.Valid {
		v := int(estimated.Int32)
		t.EstimatedTimeMinutes = &v
	}
	t.DifficultyLevel = difficulty.String
	if completed.Valid {
		t.CompletedAt = &completed.Time
	}
	return t, nil
}

// CreateFeedbackInput сохраняет текст отзыва.
func (s *Storage) CreateFeedbackInput(ctx context.Context, input *models.FeedbackInput) (*models.FeedbackInput, error) {
	const op = "storage.postgresql.CreateFeedbackInput"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	source := input.SourceType
	if source == "" {
		source = models.SourceText
	}
	in := &models.FeedbackInput{}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO feedback_inputs (project_id, original_text, source_type)
		 VALUES ($1, $2, $3)
		 RETURNING id, project_id, original_text, source_type, created_at`,
		input.ProjectID, input.OriginalText, source,
	).Scan(&in.ID, &in.ProjectID, &in.OriginalText, &in.SourceType, &in.CreatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return in, nil
}

// GetFeedbackInput возвращает отзыв по идентификатору.
func (s *Storage) GetFeedbackInput(ctx context.Context, id string) (*models.FeedbackInput, error) {
	const op = "storage.postgresql.GetFeedbackInput"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	in := &models.FeedbackInput{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, project_id, original_text, source_type, created_at
		 FROM feedback_inputs WHERE id = $1`, id,
	).Scan(&in.ID, &in.ProjectID, &in.OriginalText, &in.SourceType, &in.CreatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return in, nil
}

// ListFeedbackInputsByProject возвращает отзывы проекта в порядке создания.
func (s *Storage) ListFeedbackInputsByProject(ctx context.Context, projectID string) ([]*models.FeedbackInput, error) {
	const op = "storage.postgresql.ListFeedbackInputsByProject"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, project_id, original_text, source_type, created_at
		 FROM feedback_inputs WHERE project_id = $1 ORDER BY seq`, projectID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	res := make([]*models.FeedbackInput, 0)
	for rows.Next() {
		in := &models.FeedbackInput{}
		if err := rows.Scan(&in.ID, &in.ProjectID, &in.OriginalText, &in.SourceType, &in.CreatedAt); err != nil {
			return nil, wrap(op, err)
		}
		res = append(res, in)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return res, nil
}

// CreateTasks сохраняет задачи отзыва одной транзакцией, position = индекс.
func (s *Storage) CreateTasks(ctx context.Context, inputID string, drafts []models.TaskDraft) ([]*models.Task, error) {
	const op = "storage.postgresql.CreateTasks"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tasks AS t (input_id, position, task_description, estimated_time_minutes, difficulty_level)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+taskColumns)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer stmt.Close()

	res := make([]*models.Task, 0, len(drafts))
	for i, d := range drafts {
		var estimated sql.NullInt32
		if d.EstimatedTimeMinutes != nil {
			estimated = sql.NullInt32{Int32: int32(*d.EstimatedTimeMinutes), Valid: true}
		}
		t, err := scanTask(stmt.QueryRowContext(ctx, inputID, i, d.Description, estimated, nullString(d.DifficultyLevel)))
		if err != nil {
			return nil, wrap(op, err)
		}
		res = append(res, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListTasksByInput возвращает задачи отзыва по возрастанию position.
func (s *Storage) ListTasksByInput(ctx context.Context, inputID string) ([]*models.Task, error) {
	const op = "storage.postgresql.ListTasksByInput"
	return s.listTasks(ctx, op,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.input_id = $1 ORDER BY t.position`, inputID)
}

// ListTasksByProject возвращает задачи проекта в порядке создания отзывов и position.
func (s *Storage) ListTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	const op = "storage.postgresql.ListTasksByProject"
	return s.listTasks(ctx, op,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 JOIN feedback_inputs fi ON fi.id = t.input_id
		 WHERE fi.project_id = $1
		 ORDER BY fi.seq, t.position`, projectID)
}

func (s *Storage) listTasks(ctx context.Context, op, query string, arg any) ([]*models.Task, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	res := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return res, nil
}

// GetTaskOwner проходит Task → FeedbackInput → Project и возвращает владельца проекта.
func (s *Storage) GetTaskOwner(ctx context.Context, taskID string) (string, error) {
	const op = "storage.postgresql.GetTaskOwner"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}
	var owner string
	err := s.DB.QueryRowContext(ctx,
		`SELECT p.owner_id
		 FROM tasks t
		 JOIN feedback_inputs fi ON fi.id = t.input_id
		 JOIN projects p ON p.id = fi.project_id
		 WHERE t.id = $1`, taskID).Scan(&owner)
	if err != nil {
		return "", wrap(op, err)
	}
	return owner, nil
}

// ToggleTask инвертирует is_completed одним UPDATE, конкурентные вызовы не теряются.
func (s *Storage) ToggleTask(ctx context.Context, taskID string) (*models.Task, error) {
	const op = "storage.postgresql.ToggleTask"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	t, err := scanTask(s.DB.QueryRowContext(ctx,
		`UPDATE tasks AS t
		 SET is_completed = NOT t.is_completed,
		     completed_at = CASE WHEN t.is_completed THEN NULL ELSE now() END
		 WHERE t.id = $1
		 RETURNING `+taskColumns, taskID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return t, nil
}
