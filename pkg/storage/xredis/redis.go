package xredis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/distributed/xdlock"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/observability/xmetrics"
)

const componentName = "xredis"

// Redis Redis 包装器接口。
type Redis interface {
	// Client 返回底层客户端。
	Client() redis.UniversalClient

	// Health 执行 PING。
	Health(ctx context.Context) error

	// Stats 返回统计信息。
	Stats() Stats

	// Close 关闭底层客户端，重复调用返回 ErrClosed。
	Close() error

	// Lock 以 SET NX EX 获取锁。锁被他人持有时返回 (false, nil)。
	Lock(ctx context.Context, key string, ttl time.Duration, value any) (bool, error)

	// Unlock 释放锁，锁不存在不是错误。
	Unlock(ctx context.Context, key string) error

	// MultiGet 批量读取，返回值与 keys 等长同序，不存在的 key 对应 nil。
	MultiGet(ctx context.Context, keys []string, opts ...MultiGetOption) ([]any, error)

	Commands
}

// Stats 包装器统计信息。
type Stats struct {
	PingCount  int64
	PingErrors int64
	// Ops 经由包装器发出的调用次数，OpErrors 为其中失败的次数。
	Ops      int64
	OpErrors int64
	Pool     *redis.PoolStats
}

type redisWrapper struct {
	client  redis.UniversalClient
	getter  batchGetter
	locker  *xdlock.RedisLocker
	logger  xlog.Logger
	options *Options

	health storeopt.HealthCounter
	ops    storeopt.OpCounter
	closed atomic.Bool
}

var _ Redis = (*redisWrapper)(nil)

// New 包装已初始化的客户端。Close 会关闭该客户端。
func New(client redis.UniversalClient, opts ...Option) (Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	locker, err := xdlock.NewRedisLocker(client,
		xdlock.WithLogger(o.Logger),
		xdlock.WithObserver(o.Observer),
		xdlock.WithKeyPrefix(o.LockKeyPrefix),
		xdlock.WithCallTimeout(o.CallTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("xredis: create locker: %w", err)
	}

	return &redisWrapper{
		client:  client,
		getter:  clientGetter{client: client},
		locker:  locker,
		logger:  o.Logger.With(xlog.Component(componentName)),
		options: o,
	}, nil
}

func (w *redisWrapper) Client() redis.UniversalClient {
	return w.client
}

func (w *redisWrapper) Health(ctx context.Context) (err error) {
	if w.closed.Load() {
		return ErrClosed
	}

	ctx, span := xmetrics.Start(ctx, w.options.Observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "health",
		Kind:      xmetrics.KindClient,
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	w.health.IncPing()
	ctx, cancel := storeopt.HealthContext(ctx, w.options.HealthTimeout)
	defer cancel()

	if err = w.client.Ping(ctx).Err(); err != nil {
		w.health.IncPingError()
		return fmt.Errorf("xredis health: %w", err)
	}
	return nil
}

func (w *redisWrapper) Stats() Stats {
	return Stats{
		PingCount:  w.health.PingCount(),
		PingErrors: w.health.PingErrors(),
		Ops:        w.ops.Total(),
		OpErrors:   w.ops.Errors(),
		Pool:       w.client.PoolStats(),
	}
}

func (w *redisWrapper) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return w.client.Close()
}

func (w *redisWrapper) Lock(ctx context.Context, key string, ttl time.Duration, value any) (bool, error) {
	if w.closed.Load() {
		return false, ErrClosed
	}
	ok, err := w.locker.TryLock(ctx, key, xdlock.WithTTL(ttl), xdlock.WithValue(value))
	w.ops.Observe(err)
	return ok, err
}

func (w *redisWrapper) Unlock(ctx context.Context, key string) error {
	if w.closed.Load() {
		return ErrClosed
	}
	err := w.locker.Unlock(ctx, key)
	w.ops.Observe(err)
	return err
}

// call 执行一次带超时的调用并计数。
func (w *redisWrapper) call(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if w.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	ctx, cancel := storeopt.CallContext(ctx, w.options.CallTimeout)
	defer cancel()

	err := fn(ctx)
	w.ops.Observe(err)
	return err
}
