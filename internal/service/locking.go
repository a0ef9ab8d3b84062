package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// withLock выполняет fn под блокировкой key. Занятая блокировка означает,
// что параллельный запрос того же пользователя ещё обрабатывается.
func withLock(ctx context.Context, locker Locker, key string, ttl time.Duration, logger *zap.Logger, fn func() error) error {
	acquired, token, err := locker.TryLock(ctx, key, ttl)
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !acquired {
		return fmt.Errorf("%w: another request is being processed", ErrConflict)
	}
	defer func() {
		if err := locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return fn()
}
