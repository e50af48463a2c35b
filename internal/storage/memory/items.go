package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// CreateItem сохраняет элемент обратной связи.
func (s *Storage) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	const op = "storage.memory.CreateItem"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[item.OwnerID]; !ok {
		return nil, notFound(op)
	}
	it := *item
	it.ID = uuid.NewString()
	it.CreatedAt = s.now()
	it.UpdatedAt = it.CreatedAt
	s.items[it.ID] = &it
	s.itemOrder = append(s.itemOrder, it.ID)

	out := it
	return &out, nil
}

// ListItems возвращает элементы владельца, удовлетворяющие фильтру, в порядке создания.
func (s *Storage) ListItems(ctx context.Context, filter models.ItemFilter) ([]*models.Item, error) {
	const op = "storage.memory.ListItems"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*models.Item, 0)
	for _, id := range s.itemOrder {
		it := s.items[id]
		if filter.OwnerID != "" && it.OwnerID != filter.OwnerID {
			continue
		}
		if !filter.Match(it) {
			continue
		}
		out := *it
		res = append(res, &out)
	}
	return res, nil
}

// GetItem возвращает элемент по идентификатору.
func (s *Storage) GetItem(ctx context.Context, id string) (*models.Item, error) {
	const op = "storage.memory.GetItem"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, notFound(op)
	}
	out := *it
	return &out, nil
}

// UpdateItem применяет частичное обновление, пустые поля patch не меняются.
func (s *Storage) UpdateItem(ctx context.Context, id string, patch models.ItemPatch) (*models.Item, error) {
	const op = "storage.memory.UpdateItem"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return nil, notFound(op)
	}
	if patch.Title != "" {
		it.Title = patch.Title
	}
	if patch.Description != "" {
		it.Description = patch.Description
	}
	if patch.Category != "" {
		it.Category = patch.Category
	}
	if patch.Status != "" {
		it.Status = patch.Status
	}
	it.UpdatedAt = s.now()

	out := *it
	return &out, nil
}

// DeleteItem удаляет элемент.
func (s *Storage) DeleteItem(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteItem"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return notFound(op)
	}
	delete(s.items, id)
	s.itemOrder = without(s.itemOrder, id)
	return nil
}
