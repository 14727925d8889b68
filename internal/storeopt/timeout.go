package storeopt

import (
	"context"
	"time"
)

const (
	// DefaultHealthTimeout 默认健康检查超时时间。
	DefaultHealthTimeout = 5 * time.Second

	// DefaultCallTimeout 单次存储调用的默认等待上限。
	DefaultCallTimeout = time.Second

	// DefaultCleanupTimeout 补偿删除（best-effort）使用的独立超时。
	DefaultCleanupTimeout = time.Second
)

// HealthContext 创建带健康检查超时的 context。
// 如果 timeout <= 0，返回原始 context 和空的 cancel 函数。
func HealthContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// CallContext 为单次调用附加等待上限。
//
// 调用方已有更早的 deadline 时，context.WithTimeout 会保留较早者。
// timeout <= 0 时不附加。
func CallContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// DetachedContext 返回与调用方取消信号解耦的 context，用于补偿操作。
//
// 保留 ctx 中的 values（如 trace 信息），但不继承取消与 deadline，
// 因此即使原请求已超时，补偿删除仍有 timeout 的时间完成。
func DetachedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
