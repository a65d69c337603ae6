package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultRedisTTL = 30 * time.Minute

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// RedisClient is the subset of *redis.Client the locker uses.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLocker takes a lease with SET NX PX. TTL bounds how long a crashed
// holder can block other runs.
type RedisLocker struct {
	Client RedisClient
	Prefix string
	TTL    time.Duration
	Logger *zap.Logger
}

func NewRedisLocker(opt *redis.Options, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{Client: redis.NewClient(opt), Prefix: "lock:", TTL: ttl, Logger: logger}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	if l == nil || l.Client == nil {
		return nil, false, errors.New("redis locker client is nil")
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	fullKey := l.Prefix + key
	token := uuid.NewString()

	ok, err := l.Client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := l.Client.Eval(rctx, releaseScript, []string{fullKey}, token).Err()
			if err != nil && err != redis.Nil && l.Logger != nil {
				l.Logger.Warn("redis lock release failed", zap.String("key", fullKey), zap.Error(err))
			}
		})
	}, true, nil
}
