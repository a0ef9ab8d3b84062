// Package lock сериализует создание заявок одного участника между репликами сервиса.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// снимаем блокировку, только если она всё ещё наша
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

func NewRedisLocker(client redis.UniversalClient, prefix string, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix, logger: logger}
}

func (l *RedisLocker) key(key string) string {
	return l.prefix + key
}

// TryLock пытается занять key на ttl. Возвращает токен для Unlock.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, l.key(key), token, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !acquired {
		l.logger.Debug("Lock is busy", zap.String("key", key))
		return false, "", nil
	}

	return true, token, nil
}

// Unlock освобождает key, если он занят токеном token
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	released, err := unlockScript.Run(ctx, l.client, []string{l.key(key)}, token).Int()
	if err != nil {
		return fmt.Errorf("redis unlock %s: %w", key, err)
	}
	if released == 0 {
		l.logger.Warn("Lock expired before release", zap.String("key", key))
	}
	return nil
}

// LocalLocker блокировка в памяти процесса, когда Redis не настроен
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]localLock
}

type localLock struct {
	token   string
	expires time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]localLock)}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if held, ok := l.locks[key]; ok && now.Before(held.expires) {
		return false, "", nil
	}

	token := uuid.NewString()
	l.locks[key] = localLock{token: token, expires: now.Add(ttl)}
	return true, token, nil
}

func (l *LocalLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[key]; ok && held.token == token {
		delete(l.locks, key)
	}
	return nil
}
