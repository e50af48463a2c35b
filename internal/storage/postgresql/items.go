package postgresql

import (
	"context"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

const itemColumns = `id, owner_id, title, description, category, status, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	it := &models.Item{}
	if err := row.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category,
		&it.Status, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return it, nil
}

// CreateItem сохраняет элемент обратной связи.
func (s *Storage) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	const op = "storage.postgresql.CreateItem"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	it, err := scanItem(s.DB.QueryRowContext(ctx,
		`INSERT INTO items (owner_id, title, description, category, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+itemColumns,
		item.OwnerID, item.Title, item.Description, item.Category, item.Status))
	if err != nil {
		return nil, wrap(op, err)
	}
	return it, nil
}

// ListItems возвращает элементы, удовлетворяющие фильтру, в порядке создания.
func (s *Storage) ListItems(ctx context.Context, filter models.ItemFilter) ([]*models.Item, error) {
	const op = "storage.postgresql.ListItems"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var (
		conds []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, column+" = $"+strconv.Itoa(len(args)))
	}
	add("owner_id", filter.OwnerID)
	add("category", filter.Category)
	add("status", filter.Status)

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY seq`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	res := make([]*models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return res, nil
}

// GetItem возвращает элемент по идентификатору.
func (s *Storage) GetItem(ctx context.Context, id string) (*models.Item, error) {
	const op = "storage.postgresql.GetItem"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	it, err := scanItem(s.DB.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return it, nil
}

// UpdateItem применяет частичное обновление, пустые поля patch не меняются.
func (s *Storage) UpdateItem(ctx context.Context, id string, patch models.ItemPatch) (*models.Item, error) {
	const op = "storage.postgresql.UpdateItem"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	it, err := scanItem(s.DB.QueryRowContext(ctx,
		`UPDATE items SET
		     title       = COALESCE(NULLIF($2, ''), title),
		     description = COALESCE(NULLIF($3, ''), description),
		     category    = COALESCE(NULLIF($4, ''), category),
		     status      = COALESCE(NULLIF($5, ''), status),
		     updated_at  = now()
		 WHERE id = $1
		 RETURNING `+itemColumns,
		id, patch.Title, patch.Description, patch.Category, patch.Status))
	if err != nil {
		return nil, wrap(op, err)
	}
	return it, nil
}

// DeleteItem удаляет элемент.
func (s *Storage) DeleteItem(ctx context.Context, id string) error {
	const op = "storage.postgresql.DeleteItem"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}
