package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockBusy indicates the identity is being processed elsewhere.
var ErrLockBusy = errors.New("identity lock busy")

// IdentityLocker serializes critical sections keyed by a document identity.
// A nil locker is a no-op so single-process deployments can skip Redis.
type IdentityLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewIdentityLocker builds a locker on top of a Redis connection.
func NewIdentityLocker(rdb redis.UniversalClient) *IdentityLocker {
	return &IdentityLocker{client: redislock.New(rdb), ttl: 30 * time.Second}
}

// Acquire obtains the named lock, retrying briefly under contention.
// The returned release function is safe to call exactly once.
func (l *IdentityLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 30),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("%w: %s", ErrLockBusy, key)
		}
		return nil, err
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = lock.Release(releaseCtx)
	}, nil
}

// ReturnLockKey builds the lock key guarding a purchase-return identity.
func ReturnLockKey(identity string) string {
	return fmt.Sprintf("procurement:return:%s:lock", identity)
}
