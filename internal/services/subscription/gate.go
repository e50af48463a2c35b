// Package services содержит проверку оплаченной подписки перед платными операциями.
package services

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// UserReader читает пользователя из хранилища.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Gate пропускает только пользователей с активной подпиской.
type Gate struct {
	users UserReader
}

// NewGate создаёт Gate поверх хранилища пользователей.
func NewGate(users UserReader) *Gate {
	return &Gate{users: users}
}

// RequireActive заново читает пользователя из хранилища и возвращает его,
// если статус подписки active, иначе models.ErrPaymentRequired.
func (g *Gate) RequireActive(ctx context.Context, userID string) (*models.User, error) {
	const op = "services.subscription.RequireActive"
	user, err := g.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.HasActiveSubscription() {
		return nil, fmt.Errorf("%s: status %q: %w", op, user.SubscriptionStatus, models.ErrPaymentRequired)
	}
	return user, nil
}
