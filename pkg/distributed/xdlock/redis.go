package xdlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/observability/xmetrics"
)

// KVStore RedisLocker 需要的最小能力，redis.UniversalClient 满足此接口。
type KVStore interface {
	SetArgs(ctx context.Context, key string, value any, a redis.SetArgs) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ KVStore = (redis.UniversalClient)(nil)

// RedisLocker 基于 SET NX EX 的分布式锁。
type RedisLocker struct {
	client      KVStore
	logger      xlog.Logger
	observer    xmetrics.Observer
	prefix      string
	callTimeout time.Duration
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker 创建 Redis 锁。
func NewRedisLocker(client KVStore, opts ...Option) (*RedisLocker, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	o := applyOptions(opts)
	return &RedisLocker{
		client:      client,
		logger:      o.logger.With(xlog.Component(componentName)),
		observer:    o.observer,
		prefix:      o.prefix(DefaultRedisKeyPrefix),
		callTimeout: o.callTimeout,
	}, nil
}

// Key 返回 key 在 Redis 中的实际名称。
func (l *RedisLocker) Key(key string) string {
	return l.prefix + key
}

// TryLock 尝试获取锁，必须通过 WithTTL 指定过期时间。
//
// 写入失败（包括调用超时）时尽力删除锁 key 后返回原始错误；
// 写入成功但 Redis 未返回确认内容时记录异常日志，同样删除 key 并返回 false。
// 调用方 ctx 已结束或被调用方取消时直接返回错误，不做删除，避免删掉他人持有的锁。
func (l *RedisLocker) TryLock(ctx context.Context, key string, opts ...LockOption) (acquired bool, err error) {
	lo := applyLockOptions(opts)
	if err := validateKey(key); err != nil {
		return false, err
	}
	ttl, err := ttlSeconds(lo.ttl)
	if err != nil {
		return false, err
	}
	payload, err := encodeValue(lo.value)
	if err != nil {
		return false, err
	}

	ctx, span := xmetrics.Start(ctx, l.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "redis.try_lock",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.StoreKey(key), xmetrics.Int64(xmetrics.AttrTTL, ttl)},
	})
	defer func() { span.End(lockResult(acquired, err)) }()

	fullKey := l.Key(key)
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("xdlock: set %s: %w", fullKey, err)
	}
	callCtx, cancel := storeopt.CallContext(ctx, l.callTimeout)
	defer cancel()

	status, err := l.client.SetArgs(callCtx, fullKey, payload, redis.SetArgs{Mode: "NX", TTL: lo.ttl}).Result()
	switch {
	case errors.Is(err, redis.Nil):
		l.logger.Debug(ctx, "lock held by another owner", xlog.Key(fullKey))
		return false, nil
	case err != nil && callerCanceled(ctx, err):
		l.logger.Warn(ctx, "acquire lock canceled by caller", xlog.Key(fullKey), xlog.Err(err))
		return false, fmt.Errorf("xdlock: set %s: %w", fullKey, err)
	case err != nil:
		l.cleanup(ctx, fullKey)
		l.logger.Error(ctx, "acquire lock failed", xlog.Key(fullKey), xlog.Err(err))
		return false, fmt.Errorf("xdlock: set %s: %w", fullKey, err)
	case status == "":
		l.logger.Error(ctx, "possible anomaly: conditional set returned no confirmation", xlog.Key(fullKey))
		l.cleanup(ctx, fullKey)
		return false, nil
	}

	l.logger.Debug(ctx, "lock acquired", xlog.Key(fullKey))
	return true, nil
}

// Unlock 删除锁 key，key 不存在不是错误。
func (l *RedisLocker) Unlock(ctx context.Context, key string) (err error) {
	if err := validateKey(key); err != nil {
		return err
	}

	ctx, span := xmetrics.Start(ctx, l.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "redis.unlock",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.StoreKey(key)},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	callCtx, cancel := storeopt.CallContext(ctx, l.callTimeout)
	defer cancel()

	fullKey := l.Key(key)
	if err := l.client.Del(callCtx, fullKey).Err(); err != nil {
		l.logger.Error(ctx, "release lock failed", xlog.Key(fullKey), xlog.Err(err))
		return fmt.Errorf("xdlock: del %s: %w", fullKey, err)
	}
	return nil
}

// cleanup 尽力删除锁 key，结果被丢弃。
// 使用与请求解耦的 context，原请求超时后仍能发出删除。
func (l *RedisLocker) cleanup(ctx context.Context, fullKey string) {
	cleanCtx, cancel := storeopt.DetachedContext(ctx, storeopt.DefaultCleanupTimeout)
	defer cancel()
	if err := l.client.Del(cleanCtx, fullKey).Err(); err != nil {
		l.logger.Warn(ctx, "lock cleanup failed", xlog.Key(fullKey), xlog.Err(err))
	}
}

// callerCanceled 判断错误是否来自调用方自己的取消，而不是单次调用超时或传输错误。
func callerCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

func lockResult(acquired bool, err error) xmetrics.Result {
	if err == nil && !acquired {
		return xmetrics.Result{Outcome: xmetrics.OutcomeContended}
	}
	return xmetrics.Result{Err: err}
}
