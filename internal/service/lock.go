package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock cannot be acquired before the
// context or the locker's wait limit expires.
var ErrLockTimeout = errors.New("reservation store lock timeout")

// Locker guards one read-modify-write cycle on the reservation store.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// NopLocker performs no coordination; concurrent cycles may overwrite each
// other (last writer wins).
type NopLocker struct{}

func (NopLocker) Lock(context.Context) (func(), error) { return func() {}, nil }

// MutexLocker serializes cycles within a single process.
type MutexLocker struct {
	sem chan struct{}
}

func NewMutexLocker() *MutexLocker { return &MutexLocker{sem: make(chan struct{}, 1)} }

func (l *MutexLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
	}
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes cycles across processes with SET NX PX.  TTL bounds
// how long a crashed holder can block others.
type RedisLocker struct {
	RDB   *redis.Client
	Key   string
	TTL   time.Duration
	Wait  time.Duration // maximum time spent acquiring
	Retry time.Duration // poll interval
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{
		RDB:   rdb,
		Key:   "fest:lock:reservations",
		TTL:   10 * time.Second,
		Wait:  5 * time.Second,
		Retry: 50 * time.Millisecond,
	}
}

func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.Wait)
	defer cancel()
	token := uuid.NewString()
	for {
		ok, err := l.RDB.SetNX(ctx, l.Key, token, l.TTL).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("redis lock: %w", err)
		}
		if ok {
			return func() {
				rctx, rcancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer rcancel()
				_ = releaseScript.Run(rctx, l.RDB, []string{l.Key}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(l.Retry):
		}
	}
}

// NewLocker builds the locker for mode: none, process or redis.
func NewLocker(mode string, rdb *redis.Client) (Locker, error) {
	switch mode {
	case "", "none":
		return NopLocker{}, nil
	case "process":
		return NewMutexLocker(), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis lock requested but redis is unavailable")
		}
		return NewRedisLocker(rdb), nil
	}
	return nil, fmt.Errorf("unknown lock mode %q", mode)
}
