package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker 进程内锁，未启用 Redis 时使用
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]uint64
	until map[string]time.Time
	seq   uint64
	now   func() time.Time
}

// NewMemoryLocker 创建进程内锁
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held:  make(map[string]uint64),
		until: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Acquire 获取锁，ttl <= 0 表示不过期
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		exp, hasExp := l.until[key]
		if !hasExp || l.now().Before(exp) {
			return nil, ErrLocked
		}
	}

	l.seq++
	token := l.seq
	l.held[key] = token
	if ttl > 0 {
		l.until[key] = l.now().Add(ttl)
	} else {
		delete(l.until, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			// 过期后被他人重新获取的锁不释放
			if l.held[key] == token {
				delete(l.held, key)
				delete(l.until, key)
			}
		})
	}, nil
}
