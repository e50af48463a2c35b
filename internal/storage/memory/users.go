package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// CreateUser сохраняет пользователя. Повторный email даёт models.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.memory.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByEmail[user.Email]; ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
	}
	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	if u.SubscriptionStatus == "" {
		u.SubscriptionStatus = models.SubscriptionInactive
	}
	s.users[u.ID] = &u
	s.usersByEmail[u.Email] = u.ID
	s.userOrder = append(s.userOrder, u.ID)

	out := u
	return &out, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.memory.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound(op)
	}
	out := *u
	return &out, nil
}

// GetUserByEmail возвращает пользователя по нормализованному email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.memory.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, notFound(op)
	}
	out := *s.users[id]
	return &out, nil
}

// GetUserByStripeCustomerID возвращает пользователя по идентификатору клиента Stripe.
func (s *Storage) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.memory.GetUserByStripeCustomerID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if customerID == "" {
		return nil, notFound(op)
	}
	for _, u := range s.users {
		if u.StripeCustomerID == customerID {
			out := *u
			return &out, nil
		}
	}
	return nil, notFound(op)
}

// SetStripeCustomerID сохраняет идентификатор клиента Stripe.
func (s *Storage) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	const op = "storage.memory.SetStripeCustomerID"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return notFound(op)
	}
	u.StripeCustomerID = customerID
	u.UpdatedAt = s.now()
	return nil
}

// SetSubscriptionStatus меняет статус подписки.
func (s *Storage) SetSubscriptionStatus(ctx context.Context, userID, status string) error {
	const op = "storage.memory.SetSubscriptionStatus"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return notFound(op)
	}
	u.SubscriptionStatus = status
	u.UpdatedAt = s.now()
	return nil
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.memory.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		u := *s.users[id]
		res = append(res, &u)
	}
	return res, nil
}

// UpdateUser меняет имя и email. Занятый email даёт models.ErrConflict.
func (s *Storage) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	const op = "storage.memory.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound(op)
	}
	if patch.Email != "" && patch.Email != u.Email {
		if _, taken := s.usersByEmail[patch.Email]; taken {
			return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
		}
		delete(s.usersByEmail, u.Email)
		s.usersByEmail[patch.Email] = id
		u.Email = patch.Email
	}
	if patch.Name != "" {
		u.Name = patch.Name
	}
	u.UpdatedAt = s.now()

	out := *u
	return &out, nil
}

// DeleteUser удаляет пользователя вместе с его проектами, элементами и
// записями использования.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return notFound(op)
	}
	delete(s.usersByEmail, u.Email)
	delete(s.users, id)
	s.userOrder = without(s.userOrder, id)

	for _, projectID := range append([]string(nil), s.projectOrder...) {
		if s.projects[projectID].OwnerID == id {
			s.deleteProjectLocked(projectID)
		}
	}

	keptItems := s.itemOrder[:0]
	for _, itemID := range s.itemOrder {
		if s.items[itemID].OwnerID == id {
			delete(s.items, itemID)
			continue
		}
		keptItems = append(keptItems, itemID)
	}
	s.itemOrder = keptItems

	keptUsage := s.usage[:0]
	for _, rec := range s.usage {
		if rec.UserID != id {
			keptUsage = append(keptUsage, rec)
		}
	}
	s.usage = keptUsage
	return nil
}
