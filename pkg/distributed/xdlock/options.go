package xdlock

import (
	"time"

	"github.com/google/uuid"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/observability/xmetrics"
)

// 默认值
const (
	DefaultRedisKeyPrefix = "lock:"
	DefaultMongoKeyPrefix = "lock_"
	DefaultLockTTL        = 60 * time.Second
)

const componentName = "xdlock"

// Option 锁实现的构造选项。
type Option func(*options)

type options struct {
	logger      xlog.Logger
	observer    xmetrics.Observer
	keyPrefix   *string
	callTimeout time.Duration
	lockTTL     time.Duration
	owner       string
}

func defaultOptions() *options {
	return &options{
		logger:      xlog.Nop(),
		observer:    xmetrics.NoopObserver{},
		callTimeout: storeopt.DefaultCallTimeout,
		lockTTL:     DefaultLockTTL,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) prefix(def string) string {
	if o.keyPrefix == nil {
		return def
	}
	return *o.keyPrefix
}

// WithLogger 设置日志记录器，nil 时使用空实现。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		o.logger = xlog.OrNop(logger)
	}
}

// WithObserver 设置观测器，nil 时使用空实现。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		o.observer = xmetrics.OrNoop(observer)
	}
}

// WithKeyPrefix 设置锁 key 前缀，允许设为空串。
// 默认 Redis 为 "lock:"，Mongo 为 "lock_"。
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = &prefix
	}
}

// WithCallTimeout 设置单次存储调用的等待上限，默认 1 秒，<= 0 表示只受 ctx 约束。
// 超时视为失败；已发出的请求不会被撤回。
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		o.callTimeout = d
	}
}

// WithLockTTL 设置 Mongo TTL 索引的过期时间，默认 60 秒，向下取整到秒。
func WithLockTTL(d time.Duration) Option {
	return func(o *options) {
		if d >= time.Second {
			o.lockTTL = d
		}
	}
}

// WithOwner 设置写入 Mongo 锁文档的持有者标识，默认随机 UUID。
func WithOwner(owner string) Option {
	return func(o *options) {
		o.owner = owner
	}
}

func (o *options) ownerOrRandom() string {
	if o.owner != "" {
		return o.owner
	}
	return uuid.NewString()
}
