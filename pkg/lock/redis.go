package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

// ErrNotHeld ключ истек или принадлежит другому владельцу
var ErrNotHeld = errors.New("lock: not held")

// releaseScript удаляет ключ, только если в нем все еще наш токен
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock распределенная блокировка на SET NX PX
type RedisLock struct {
	client redis.UniversalClient
}

// NewRedisLock подключается к redis и проверяет соединение
func NewRedisLock(ctx context.Context, addr, password string, db int) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client}, nil
}

// NewRedisLockWithClient оборачивает существующий клиент
func NewRedisLockWithClient(client redis.UniversalClient) *RedisLock {
	return &RedisLock{client: client}
}

// Lock пытается взять key на ttl.
// ok == false, если ключ держит кто-то другой, token нужно передать в Unlock.
func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error) {
	const op = "lock.RedisLock.Lock"

	token = uuid.NewString()
	ok, err = r.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

// Unlock отпускает key, если он все еще взят с token
func (r *RedisLock) Unlock(ctx context.Context, key, token string) error {
	const op = "lock.RedisLock.Unlock"

	released, err := releaseScript.Run(ctx, r.client, []string{keyPrefix + key}, token).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if released == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotHeld)
	}

	return nil
}

// Close закрывает клиент redis
func (r *RedisLock) Close() error {
	return r.client.Close()
}

// NoopLocker всегда выдает блокировку, используется когда redis выключен
type NoopLocker struct{}

// Lock всегда успешен
func (NoopLocker) Lock(context.Context, string, time.Duration) (string, bool, error) {
	return "noop", true, nil
}

// Unlock ничего не делает
func (NoopLocker) Unlock(context.Context, string, string) error {
	return nil
}

// Close реализует io.Closer
func (NoopLocker) Close() error {
	return nil
}
