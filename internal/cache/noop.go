package cache

import (
	"context"
	"time"
)

// Noop используется, когда Redis не настроен: ничего не хранит,
// токены не отзываются.
type Noop struct{}

// Get всегда сообщает об отсутствии ключа.
func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

// Set ничего не делает.
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }

// Invalidate ничего не делает.
func (Noop) Invalidate(context.Context, string) error { return nil }

// Revoke ничего не делает.
func (Noop) Revoke(context.Context, string, time.Duration) error { return nil }

// IsRevoked всегда возвращает false.
func (Noop) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// Ping всегда успешен.
func (Noop) Ping(context.Context) error { return nil }

// Close ничего не делает.
func (Noop) Close() error { return nil }
