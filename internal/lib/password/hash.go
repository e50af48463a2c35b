// Package password реализует хеширование и проверку паролей на bcrypt.
//
// Hasher хранит стоимость bcrypt: в продакшене используется bcrypt.DefaultCost,
// в тестах можно передать bcrypt.MinCost.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinLength — минимальная допустимая длина пароля.
const MinLength = 6

// Hasher создаёт и сравнивает bcrypt-хэши паролей.
type Hasher struct {
	cost int
}

// New создаёт Hasher с указанной стоимостью. Некорректная стоимость
// заменяется на bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func (h *Hasher) Hash(password string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
func (h *Hasher) Compare(hash, password string) error {
	const op = "password.Compare"
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
