// Package ratelimit ограничивает число неудачных попыток входа.
// Счетчики живут в Redis с TTL окна, поэтому переживают перезапуск API
// и общие для всех экземпляров.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store - хранилище счетчиков (реализуется redis.Client)
type Store interface {
	GetInt(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

const keyPrefix = "ticketpro:login_attempts:"

// LoginLimiter считает неудачные попытки входа по email
type LoginLimiter struct {
	store       Store
	maxAttempts int64
	window      time.Duration
}

// NewLoginLimiter создает ограничитель: не более maxAttempts неудач за window
func NewLoginLimiter(store Store, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		store:       store,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// Allow сообщает, можно ли еще пытаться войти
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	count, err := l.store.GetInt(ctx, key(email))
	if err != nil {
		return false, fmt.Errorf("failed to read login attempts: %w", err)
	}
	return count < l.maxAttempts, nil
}

// RegisterFailure учитывает неудачную попытку
// Окно отсчитывается от первой неудачи
func (l *LoginLimiter) RegisterFailure(ctx context.Context, email string) error {
	k := key(email)

	count, err := l.store.Incr(ctx, k)
	if err != nil {
		return fmt.Errorf("failed to count login attempt: %w", err)
	}

	if count == 1 {
		if err := l.store.Expire(ctx, k, l.window); err != nil {
			return fmt.Errorf("failed to set login window: %w", err)
		}
	}

	return nil
}

// Reset сбрасывает счетчик после успешного входа
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	return l.store.Del(ctx, key(email))
}

func key(email string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email))
}
