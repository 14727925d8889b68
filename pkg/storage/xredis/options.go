package xredis

import (
	"time"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/distributed/xdlock"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/observability/xmetrics"
)

// Options 包装器配置。
type Options struct {
	// Logger 默认空实现。
	Logger xlog.Logger
	// Observer 默认空实现。
	Observer xmetrics.Observer
	// HealthTimeout 健康检查超时，默认 5 秒。
	HealthTimeout time.Duration
	// CallTimeout 单次调用等待上限，默认 1 秒。
	CallTimeout time.Duration
	// LockKeyPrefix 锁 key 前缀，默认 "lock:"。
	LockKeyPrefix string
	// BatchSize MultiGet 未指定批大小时使用的默认值，0 表示单次 MGET。
	BatchSize int
}

// Option 配置函数。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Logger:        xlog.Nop(),
		Observer:      xmetrics.NoopObserver{},
		HealthTimeout: storeopt.DefaultHealthTimeout,
		CallTimeout:   storeopt.DefaultCallTimeout,
		LockKeyPrefix: xdlock.DefaultRedisKeyPrefix,
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

// WithHealthTimeout 设置健康检查超时。
func WithHealthTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.HealthTimeout = d
		}
	}
}

// WithCallTimeout 设置单次调用等待上限，<= 0 表示只受 ctx 约束。
func WithCallTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.CallTimeout = d
	}
}

// WithLockKeyPrefix 设置锁 key 前缀。
func WithLockKeyPrefix(prefix string) Option {
	return func(o *Options) {
		o.LockKeyPrefix = prefix
	}
}

// WithDefaultBatchSize 设置 MultiGet 的默认批大小，集群部署时建议设置。
func WithDefaultBatchSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// MultiGetOption MultiGet 单次调用参数。
type MultiGetOption func(*multiGetOptions)

type multiGetOptions struct {
	batchSize *int
}

// WithBatchSize 按 n 个 key 一组发送 pipeline GET，n 必须 >= 1。
func WithBatchSize(n int) MultiGetOption {
	return func(o *multiGetOptions) {
		o.batchSize = &n
	}
}
