package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyBracketLock = "bracket:%s:lock"
	retryInterval  = 50 * time.Millisecond
)

// Deletes the key only while it still carries our token, so an expired lock
// taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// KeyBuilder prefixes keys with the deployment environment, so every
// environment sharing one Redis gets its own lock keys.
type KeyBuilder struct {
	prefix string
}

func NewKeyBuilder(environment string) *KeyBuilder {
	return &KeyBuilder{prefix: environment}
}

func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

func (kb *KeyBuilder) KeyBracketLock(bracketID string) string {
	return kb.BuildKey(fmt.Sprintf(keyBracketLock, bracketID))
}

// RedisLocker is a Locker shared by every instance pointed at the same Redis.
// Locks expire after ttl so a crashed holder cannot wedge a bracket.
type RedisLocker struct {
	rdb  *redis.Client
	keys *KeyBuilder
	wait time.Duration
	ttl  time.Duration
	log  *zap.Logger
}

func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisLocker(rdb *redis.Client, environment string, wait, ttl time.Duration, log *zap.Logger) *RedisLocker {
	return &RedisLocker{
		rdb:  rdb,
		keys: NewKeyBuilder(environment),
		wait: wait,
		ttl:  ttl,
		log:  log,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := l.keys.KeyBracketLock(key)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			l.log.Error("redis_lock_acquire", zap.String("key", redisKey), zap.Error(err))
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if !time.Now().Add(retryInterval).Before(deadline) {
			l.log.Warn("redis_lock_contention", zap.String("key", redisKey), zap.Duration("waited", l.wait))
			return nil, fmt.Errorf("%w: %s is busy", bracket.ErrLockContention, key)
		}

		select {
		case <-time.After(retryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	l.log.Debug("redis_lock_acquired", zap.String("key", redisKey))

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled.
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			n, err := releaseScript.Run(ctx, l.rdb, []string{redisKey}, token).Int()
			if err != nil && !errors.Is(err, redis.Nil) {
				l.log.Error("redis_lock_release", zap.String("key", redisKey), zap.Error(err))
				return
			}
			if n == 0 {
				l.log.Warn("redis_lock_expired", zap.String("key", redisKey))
			}
		})
	}, nil
}
