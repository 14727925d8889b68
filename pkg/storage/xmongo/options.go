package xmongo

import (
	"time"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/distributed/xdlock"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/observability/xmetrics"
)

// Options 包装器配置。
type Options struct {
	Logger        xlog.Logger
	Observer      xmetrics.Observer
	HealthTimeout time.Duration

	// LockDatabase/LockCollection 锁集合，均非空时才能启用锁。
	LockDatabase   string
	LockCollection string
	// LockOptions 透传给 xdlock.NewMongoLocker。
	LockOptions []xdlock.Option
}

// Option 配置函数。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Logger:        xlog.Nop(),
		Observer:      xmetrics.NoopObserver{},
		HealthTimeout: storeopt.DefaultHealthTimeout,
	}
}

// WithLogger 设置日志记录器。
func WithLogger(logger xlog.Logger) Option {
	return func(o *Options) {
		o.Logger = xlog.OrNop(logger)
	}
}

// WithObserver 设置观测器。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *Options) {
		o.Observer = xmetrics.OrNoop(observer)
	}
}

// WithHealthTimeout 设置健康检查超时，默认 5 秒。
func WithHealthTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.HealthTimeout = d
		}
	}
}

// WithLock 指定锁集合。
func WithLock(database, collection string) Option {
	return func(o *Options) {
		o.LockDatabase = database
		o.LockCollection = collection
	}
}

// WithLockOptions 追加锁实现的选项（前缀、TTL、持有者等）。
func WithLockOptions(opts ...xdlock.Option) Option {
	return func(o *Options) {
		o.LockOptions = append(o.LockOptions, opts...)
	}
}

func (o *Options) lockConfigured() bool {
	return o.LockDatabase != "" && o.LockCollection != ""
}
