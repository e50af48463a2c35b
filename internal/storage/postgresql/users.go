package postgresql

import (
	"context"
	"database/sql"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

const userColumns = `id, email, name, password_hash, subscription_status,
		COALESCE(stripe_customer_id, ''), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.SubscriptionStatus,
		&u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя. Повторный email даёт models.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.postgresql.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	status := user.SubscriptionStatus
	if status == "" {
		status = models.SubscriptionInactive
	}
	query := `INSERT INTO users (email, name, password_hash, subscription_status, stripe_customer_id)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.Email, user.Name, user.PasswordHash, status, nullString(user.StripeCustomerID)))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgresql.GetUserByID"
	return s.getUser(ctx, op, `WHERE id = $1`, id)
}

// GetUserByEmail возвращает пользователя по нормализованному email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgresql.GetUserByEmail"
	return s.getUser(ctx, op, `WHERE email = $1`, email)
}

// GetUserByStripeCustomerID возвращает пользователя по идентификатору клиента Stripe.
func (s *Storage) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.postgresql.GetUserByStripeCustomerID"
	if customerID == "" {
		return nil, wrap(op, sql.ErrNoRows)
	}
	return s.getUser(ctx, op, `WHERE stripe_customer_id = $1`, customerID)
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// SetStripeCustomerID сохраняет идентификатор клиента Stripe.
func (s *Storage) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	const op = "storage.postgresql.SetStripeCustomerID"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET stripe_customer_id = $2, updated_at = now() WHERE id = $1`,
		userID, nullString(customerID))
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// SetSubscriptionStatus меняет статус подписки.
func (s *Storage) SetSubscriptionStatus(ctx context.Context, userID, status string) error {
	const op = "storage.postgresql.SetSubscriptionStatus"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET subscription_status = $2, updated_at = now() WHERE id = $1`,
		userID, status)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.postgresql.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	res := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return res, nil
}

// UpdateUser меняет имя и email. Занятый email даёт models.ErrConflict.
func (s *Storage) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	const op = "storage.postgresql.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`UPDATE users SET
		     name       = COALESCE(NULLIF($2, ''), name),
		     email      = COALESCE(NULLIF($3, ''), email),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, patch.Name, patch.Email))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// DeleteUser удаляет пользователя. Проекты, отзывы, элементы и записи
// использования удаляются каскадно внешними ключами.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.postgresql.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}
