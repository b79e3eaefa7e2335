package redis

import (
	"context"
	"fmt"
	"time"

	"gym-membership-service/internal/domain"

	"github.com/google/uuid"
)

// Locker provides a best-effort distributed lock. The background workers take
// a cycle lock so only one replica runs a billing batch at a time; the
// database advisory lock remains the source of truth for per-membership
// serialization.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type RedisLocker struct {
	cli RedisClient
}

var _ Locker = (*RedisLocker)(nil)

func NewLocker(cli RedisClient) *RedisLocker {
	return &RedisLocker{cli: cli}
}

func MembershipLockKey(membershipID string) string {
	return fmt.Sprintf("lock:membership:%s", membershipID)
}

// WorkerLockKey names the cycle lock that keeps a background worker from
// running concurrently across replicas.
func WorkerLockKey(worker string) string {
	return fmt.Sprintf("lock:worker:%s", worker)
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < 5; i++ { // 5 tries
		ok, err := l.cli.SetNX(ctx, key, token, ttl)
		if err != nil {
			continue
		}
		if ok {
			return token, nil
		}
		time.Sleep(50 * time.Millisecond) // wait before retrying
	}
	return "", domain.ErrLockNotAcquired
}

const luaUnlock = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.cli.Eval(ctx, luaUnlock, []string{key}, token)
	return err
}
