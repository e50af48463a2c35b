package models

// Типы событий Stripe, которые меняют статус подписки.
const (
	BillingEventCheckoutCompleted   = "checkout.session.completed"
	BillingEventSubscriptionDeleted = "customer.subscription.deleted"
	BillingEventSubscriptionUpdated = "customer.subscription.updated"
)

// CheckoutSession — созданная сессия оплаты.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// BillingEvent — проверенное событие платёжного провайдера в доменном виде.
type BillingEvent struct {
	ID                 string
	Type               string
	CustomerID         string
	CustomerEmail      string
	UserID             string // из client_reference_id или metadata, может быть пустым
	SubscriptionStatus string // статус подписки у провайдера для customer.subscription.*
}
