// Package lock 提供流水线运行互斥锁，保证同一产物目录同时只有一次运行
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLocked 锁已被占用
var ErrLocked = errors.New("pipeline run already in progress")

// Locker 运行锁
type Locker interface {
	// Acquire 获取锁，成功时返回释放函数，锁被占用时返回 ErrLocked
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
