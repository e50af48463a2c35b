// Package services управляет оплатой подписки: создаёт сессии оплаты и
// применяет события вебхуков к статусу подписки пользователя.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// UserRepository описывает операции с пользователями, нужные для оплаты.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	SetSubscriptionStatus(ctx context.Context, userID, status string) error
}

// Provider — платёжный провайдер.
type Provider interface {
	CreateCustomer(ctx context.Context, email, name, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, userID string) (*models.CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*models.BillingEvent, error)
}

// Cache сбрасывает закэшированный профиль после смены статуса.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// BillingService связывает пользователей с платёжным провайдером.
type BillingService struct {
	users    UserRepository
	provider Provider
	cache    Cache
	log      *slog.Logger
}

// NewBillingService создаёт сервис оплаты.
func NewBillingService(users UserRepository, provider Provider, cache Cache, log *slog.Logger) *BillingService {
	return &BillingService{
		users:    users,
		provider: provider,
		cache:    cache,
		log:      log,
	}
}

// CreateCheckoutSession создаёт сессию оплаты. Клиент у провайдера создаётся
// при первом обращении. Для активной подписки возвращается models.ErrConflict.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID string) (*models.CheckoutSession, error) {
	const op = "services.billing.CreateCheckoutSession"
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.HasActiveSubscription() {
		return nil, fmt.Errorf("%s: already subscribed: %w", op, models.ErrConflict)
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(ctx, user.Email, user.Name, user.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.users.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.invalidate(ctx, user.ID)
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, customerID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("checkout session created", slog.String("user_id", user.ID), slog.String("session_id", sess.SessionID))
	return sess, nil
}

// HandleWebhook проверяет событие и применяет его. Неизвестные события и
// пользователи подтверждаются без ошибки.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	const op = "services.billing.HandleWebhook"
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log := s.log.With(slog.String("event_id", event.ID), slog.String("event_type", event.Type))

	switch event.Type {
	case models.BillingEventCheckoutCompleted:
		err = s.checkoutCompleted(ctx, log, event)
	case models.BillingEventSubscriptionDeleted:
		err = s.setStatusByCustomer(ctx, log, event.CustomerID, models.SubscriptionCanceled)
	case models.BillingEventSubscriptionUpdated:
		status, ok := mapSubscriptionStatus(event.SubscriptionStatus)
		if !ok {
			log.Debug("subscription status ignored", slog.String("status", event.SubscriptionStatus))
			return nil
		}
		err = s.setStatusByCustomer(ctx, log, event.CustomerID, status)
	default:
		log.Debug("webhook event ignored")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *BillingService) checkoutCompleted(ctx context.Context, log *slog.Logger, event *models.BillingEvent) error {
	user, err := s.findCheckoutUser(ctx, event)
	if errors.Is(err, models.ErrNotFound) {
		log.Warn("checkout completed for unknown user", slog.String("email", event.CustomerEmail))
		return nil
	}
	if err != nil {
		return err
	}

	if event.CustomerID != "" && event.CustomerID != user.StripeCustomerID {
		if err := s.users.SetStripeCustomerID(ctx, user.ID, event.CustomerID); err != nil {
			return err
		}
	}
	if err := s.users.SetSubscriptionStatus(ctx, user.ID, models.SubscriptionActive); err != nil {
		return err
	}
	s.invalidate(ctx, user.ID)
	log.Info("subscription activated", slog.String("user_id", user.ID))
	return nil
}

// findCheckoutUser ищет пользователя сначала по client_reference_id, затем по email.
func (s *BillingService) findCheckoutUser(ctx context.Context, event *models.BillingEvent) (*models.User, error) {
	if event.UserID != "" {
		user, err := s.users.GetUserByID(ctx, event.UserID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}
	if event.CustomerEmail == "" {
		return nil, models.ErrNotFound
	}
	return s.users.GetUserByEmail(ctx, models.NormalizeEmail(event.CustomerEmail))
}

func (s *BillingService) setStatusByCustomer(ctx context.Context, log *slog.Logger, customerID, status string) error {
	if customerID == "" {
		log.Warn("subscription event without customer")
		return nil
	}
	user, err := s.users.GetUserByStripeCustomerID(ctx, customerID)
	if errors.Is(err, models.ErrNotFound) {
		log.Warn("subscription event for unknown customer", slog.String("customer_id", customerID))
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.users.SetSubscriptionStatus(ctx, user.ID, status); err != nil {
		return err
	}
	s.invalidate(ctx, user.ID)
	log.Info("subscription status changed", slog.String("user_id", user.ID), slog.String("status", status))
	return nil
}

func (s *BillingService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	key := models.UserCacheKey(userID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to invalidate user cache", slog.String("key", key), sl.Err(err))
	}
}

// mapSubscriptionStatus переводит статус подписки Stripe в статус пользователя.
func mapSubscriptionStatus(status string) (string, bool) {
	switch status {
	case "active":
		return models.SubscriptionActive, true
	case "canceled", "past_due", "unpaid":
		return models.SubscriptionCanceled, true
	default:
		return "", false
	}
}
