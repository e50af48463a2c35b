// Package models содержит доменные структуры FeedbackFix: пользователей,
// проекты, входящие отзывы, сгенерированные задачи и вспомогательные типы.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import (
	"strings"
	"time"
)

// Статусы подписки пользователя.
const (
	SubscriptionInactive = "inactive"
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID                 string    // Уникальный идентификатор пользователя
	Email              string    // Электронная почта, хранится в нормализованном виде
	Name               string    // Отображаемое имя (опционально)
	PasswordHash       string    // Хэш пароля, никогда не покидает систему
	SubscriptionStatus string    // inactive, active или canceled
	StripeCustomerID   string    // Идентификатор клиента в Stripe (пустой, пока не создан)
	CreatedAt          time.Time // Дата регистрации
	UpdatedAt          time.Time // Дата последнего изменения
}

// PublicUser — представление пользователя, которое разрешено отдавать клиенту.
type PublicUser struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name,omitempty"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
}

// Public возвращает проекцию пользователя без учётных данных.
// Это единственный способ вывести пользователя за пределы сервиса.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		SubscriptionStatus: u.SubscriptionStatus,
		CreatedAt:          u.CreatedAt,
	}
}

// UserPatch описывает изменение профиля. Пустые поля не меняются,
// Email передаётся уже нормализованным.
type UserPatch struct {
	Name  string
	Email string
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserCacheKey возвращает ключ кэша для профиля пользователя.
func UserCacheKey(userID string) string {
	return "user:" + userID
}

// HasActiveSubscription сообщает, оплачена ли подписка пользователя.
func (u *User) HasActiveSubscription() bool {
	return u.SubscriptionStatus == SubscriptionActive
}
