package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const lockKeyPrefix = "lock:"

// releaseScript 仅当值仍为本次持有的 token 时删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 基于 Redis SET NX 的分布式锁
type RedisLocker struct {
	client *redis.Client
	log    logrus.FieldLogger
}

// NewRedisLocker 创建 Redis 锁
func NewRedisLocker(client *redis.Client, log logrus.FieldLogger) *RedisLocker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisLocker{client: client, log: log}
}

// Acquire 获取锁
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		// 使用独立 context，调用方取消后仍能释放
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil && err != redis.Nil {
			l.log.WithError(err).WithField("key", redisKey).Warn("Failed to release lock")
		}
	}, nil
}
