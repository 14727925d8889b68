package xdlock

import (
	"context"
	"strings"
	"time"
)

// Locker 分布式锁接口。
type Locker interface {
	// TryLock 非阻塞地尝试获取锁。
	// 获取成功返回 (true, nil)；锁已被持有返回 (false, nil)。
	TryLock(ctx context.Context, key string, opts ...LockOption) (bool, error)

	// Unlock 释放锁。锁不存在不是错误。
	Unlock(ctx context.Context, key string) error
}

// LockOption 单次加锁参数。
type LockOption func(*lockOptions)

type lockOptions struct {
	ttl   time.Duration
	value any
}

// WithTTL 设置锁的过期时间，必须是不小于 1 秒的整秒数。
// 仅 RedisLocker 使用；MongoLocker 的过期由 TTL 索引统一决定（见 WithLockTTL）。
func WithTTL(ttl time.Duration) LockOption {
	return func(o *lockOptions) {
		o.ttl = ttl
	}
}

// WithValue 设置锁记录中保存的值，便于排查持有者。
// string 和 []byte 原样保存，其它类型编码为 JSON，nil 保存为空串。
func WithValue(v any) LockOption {
	return func(o *lockOptions) {
		o.value = v
	}
}

func applyLockOptions(opts []LockOption) lockOptions {
	var o lockOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}

// ttlSeconds 校验 ttl 并返回秒数。
func ttlSeconds(ttl time.Duration) (int64, error) {
	if ttl < time.Second || ttl%time.Second != 0 {
		return 0, ErrInvalidTTL
	}
	return int64(ttl / time.Second), nil
}
