package models

import "errors"

// Ошибки бизнес-уровня. Нижние слои оборачивают их через fmt.Errorf("%s: %w", op, err),
// HTTP-слой сопоставляет их со статус-кодами.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrPaymentRequired    = errors.New("payment required")
	ErrTranslation        = errors.New("translation failed")
)
