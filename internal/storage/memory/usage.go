package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// CreateUsage сохраняет запись об использовании.
func (s *Storage) CreateUsage(ctx context.Context, usage *models.Usage) error {
	const op = "storage.memory.CreateUsage"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := *usage
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.usage = append(s.usage, &u)
	return nil
}

// ListUsageByUser возвращает записи использования пользователя в порядке создания.
func (s *Storage) ListUsageByUser(ctx context.Context, userID string) ([]*models.Usage, error) {
	const op = "storage.memory.ListUsageByUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*models.Usage, 0)
	for _, u := range s.usage {
		if u.UserID == userID {
			out := *u
			res = append(res, &out)
		}
	}
	return res, nil
}
