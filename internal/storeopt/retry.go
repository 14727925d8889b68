package storeopt

import (
	"context"
	"errors"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// 连接重试默认值。
const (
	DefaultConnectAttempts = 5
	DefaultConnectDelay    = 200 * time.Millisecond
)

// ErrNilPing 表示未提供 ping 函数。
var ErrNilPing = errors.New("storeopt: nil ping function")

// ConnectOptions 控制 PingWithRetry 的重试行为。
type ConnectOptions struct {
	// Attempts 总尝试次数（含首次），<= 0 时使用 DefaultConnectAttempts。
	Attempts int
	// Delay 固定重试间隔，<= 0 时使用 DefaultConnectDelay。
	Delay time.Duration
	// OnRetry 每次失败后回调，attempt 从 1 开始。
	OnRetry func(attempt int, err error)
}

// PingWithRetry 在启动阶段反复执行 ping，直到成功、重试耗尽或 ctx 结束。
//
// 仅用于建立连接；锁与批量读取原语本身从不重试，重试策略由调用方决定。
func PingWithRetry(ctx context.Context, ping func(ctx context.Context) error, opts ConnectOptions) error {
	if ping == nil {
		return ErrNilPing
	}
	if ctx == nil {
		ctx = context.Background()
	}

	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = DefaultConnectAttempts
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultConnectDelay
	}

	retryOpts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	}
	if opts.OnRetry != nil {
		retryOpts = append(retryOpts, retry.OnRetry(func(n uint, err error) {
			// retry-go 的 n 从 0 开始
			opts.OnRetry(int(n)+1, err)
		}))
	}

	return retry.New(retryOpts...).Do(func() error {
		return ping(ctx)
	})
}
