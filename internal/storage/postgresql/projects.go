package postgresql

import (
	"context"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

const projectColumns = `id, owner_id, name, description, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	p := &models.Project{}
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProject сохраняет проект.
func (s *Storage) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	const op = "storage.postgresql.CreateProject"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	query := `INSERT INTO projects (owner_id, name, description)
			  VALUES ($1, $2, $3)
			  RETURNING ` + projectColumns
	p, err := scanProject(s.DB.QueryRowContext(ctx, query, project.OwnerID, project.Name, project.Description))
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// GetProject возвращает проект по идентификатору.
func (s *Storage) GetProject(ctx context.Context, id string) (*models.Project, error) {
	const op = "storage.postgresql.GetProject"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	p, err := scanProject(s.DB.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// ListProjectsByOwner возвращает проекты владельца в порядке создания.
func (s *Storage) ListProjectsByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	const op = "storage.postgresql.ListProjectsByOwner"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = $1 ORDER BY seq`, ownerID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	res := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return res, nil
}

// DeleteProject удаляет проект, отзывы и задачи удаляются каскадно.
func (s *Storage) DeleteProject(ctx context.Context, id string) error {
	const op = "storage.postgresql.DeleteProject"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}
