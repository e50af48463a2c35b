package postgresql

import (
	"context"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// CreateUsage сохраняет запись об обращении к сервису перевода.
func (s *Storage) CreateUsage(ctx context.Context, usage *models.Usage) error {
	const op = "storage.postgresql.CreateUsage"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO api_usage (user_id, endpoint, tasks_count, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, now()))`,
		usage.UserID, usage.Endpoint, usage.TasksCount, usage.DurationMs, nullTime(usage))
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

// ListUsageByUser возвращает записи использования пользователя в порядке создания.
func (s *Storage) ListUsageByUser(ctx context.Context, userID string) ([]*models.Usage, error) {
	const op = "storage.postgresql.ListUsageByUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, endpoint, tasks_count, duration_ms, created_at
		 FROM api_usage WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	res := make([]*models.Usage, 0)
	for rows.Next() {
		u := &models.Usage{}
		if err := rows.Scan(&u.ID, &u.UserID, &u.Endpoint, &u.TasksCount, &u.DurationMs, &u.CreatedAt); err != nil {
			return nil, wrap(op, err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return res, nil
}

func nullTime(u *models.Usage) any {
	if u.CreatedAt.IsZero() {
		return nil
	}
	return u.CreatedAt
}
