// Package paymentprovider — клиент Stripe: создание клиентов, сессий оплаты
// подписки и проверка подписи вебхуков.
package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/magabrotheeeer/feedbackfix/internal/config"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// Client обёртка над клиентом Stripe API.
type Client struct {
	api           *client.API
	webhookSecret string
	priceID       string
	successURL    string
	cancelURL     string
}

// NewClient создаёт клиент Stripe. backends позволяет подменить HTTP-слой в тестах, может быть nil.
func NewClient(cfg config.Stripe, backends *stripe.Backends) *Client {
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	return &Client{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		priceID:       cfg.PriceID,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateCustomer создаёт клиента Stripe и возвращает его идентификатор.
func (c *Client) CreateCustomer(ctx context.Context, email, name, userID string) (string, error) {
	const op = "paymentprovider.CreateCustomer"
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	cus, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return cus.ID, nil
}

// CreateCheckoutSession создаёт сессию оплаты подписки по настроенному price id.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID, userID string) (*models.CheckoutSession, error) {
	const op = "paymentprovider.CreateCheckoutSession"
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(userID),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.CheckoutSession{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

// ParseWebhook проверяет подпись и переводит событие Stripe в models.BillingEvent.
// Неверная подпись или тело дают models.ErrValidation. События других типов
// возвращаются только с ID и Type.
func (c *Client) ParseWebhook(payload []byte, signature string) (*models.BillingEvent, error) {
	const op = "paymentprovider.ParseWebhook"
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%s: signature: %w: %v", op, models.ErrValidation, err)
	}
	res, err := convertEvent(event)
	if err != nil {
		return nil, fmt.Errorf("%s: payload: %w: %v", op, models.ErrValidation, err)
	}
	return res, nil
}

func convertEvent(event stripe.Event) (*models.BillingEvent, error) {
	res := &models.BillingEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return res, nil
	}

	switch res.Type {
	case models.BillingEventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, err
		}
		if sess.Customer != nil {
			res.CustomerID = sess.Customer.ID
		}
		res.CustomerEmail = sess.CustomerEmail
		if res.CustomerEmail == "" && sess.CustomerDetails != nil {
			res.CustomerEmail = sess.CustomerDetails.Email
		}
		res.UserID = sess.ClientReferenceID
		if res.UserID == "" {
			res.UserID = sess.Metadata["user_id"]
		}
	case models.BillingEventSubscriptionDeleted, models.BillingEventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, err
		}
		if sub.Customer != nil {
			res.CustomerID = sub.Customer.ID
		}
		res.SubscriptionStatus = string(sub.Status)
	}
	return res, nil
}
