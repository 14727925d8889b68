package xredis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/observability/xmetrics"
)

// batchGetter 批量读取依赖的两种请求方式。
type batchGetter interface {
	// MGet 单条 MGET。
	MGet(ctx context.Context, keys []string) ([]any, error)
	// PipelinedGet 一个 pipeline 内按序发送 GET，返回每条命令。
	PipelinedGet(ctx context.Context, keys []string) ([]redis.Cmder, error)
}

type clientGetter struct {
	client redis.UniversalClient
}

func (g clientGetter) MGet(ctx context.Context, keys []string) ([]any, error) {
	return g.client.MGet(ctx, keys...).Result()
}

func (g clientGetter) PipelinedGet(ctx context.Context, keys []string) ([]redis.Cmder, error) {
	pipe := g.client.Pipeline()
	for _, k := range keys {
		pipe.Get(ctx, k)
	}
	cmds, err := pipe.Exec(ctx)
	// Exec 返回第一条失败命令的错误（包括 redis.Nil），逐条错误由调用方检查
	if len(cmds) == 0 && err != nil {
		return nil, err
	}
	return cmds, nil
}

// MultiGet 批量读取 keys，返回值与 keys 等长同序。
//
// 返回值元素为 string 或 nil（key 不存在）。任何一组校验失败都返回错误且不返回部分结果。
func (w *redisWrapper) MultiGet(ctx context.Context, keys []string, opts ...MultiGetOption) (values []any, err error) {
	if w.closed.Load() {
		return nil, ErrClosed
	}

	var mo multiGetOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&mo)
		}
	}
	batchSize := w.options.BatchSize
	if mo.batchSize != nil {
		if *mo.batchSize < 1 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, *mo.batchSize)
		}
		batchSize = *mo.batchSize
	}
	if len(keys) == 0 {
		return []any{}, nil
	}

	ctx, span := xmetrics.Start(ctx, w.options.Observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "multi_get",
		Kind:      xmetrics.KindClient,
		Attrs: []xmetrics.Attr{
			xmetrics.KeyCount(len(keys)),
			xmetrics.Int(xmetrics.AttrBatchSize, batchSize),
		},
	})
	defer func() {
		span.End(xmetrics.Result{Err: err})
		w.ops.Observe(err)
	}()

	if batchSize == 0 {
		values, err = w.mget(ctx, keys)
	} else {
		values, err = w.batchedGet(ctx, keys, batchSize)
	}
	if err != nil {
		w.logger.Error(ctx, "multi get failed", xlog.Count(len(keys)), xlog.Err(err))
		return nil, err
	}
	return values, nil
}

func (w *redisWrapper) mget(ctx context.Context, keys []string) ([]any, error) {
	callCtx, cancel := storeopt.CallContext(ctx, w.options.CallTimeout)
	defer cancel()

	raw, err := w.getter.MGet(callCtx, keys)
	if err != nil {
		return nil, fmt.Errorf("xredis: mget: %w", err)
	}
	if len(raw) != len(keys) {
		return nil, fmt.Errorf("%w: mget returned %d values for %d keys", ErrInconsistent, len(raw), len(keys))
	}
	for i, v := range raw {
		switch v.(type) {
		case nil, string:
		default:
			return nil, fmt.Errorf("%w: unexpected %T for key %q", ErrInconsistent, v, keys[i])
		}
	}
	return raw, nil
}

// batchedGet 按 batchSize 切分 keys 依次发送，各组结果按原顺序拼接。
func (w *redisWrapper) batchedGet(ctx context.Context, keys []string, batchSize int) ([]any, error) {
	out := make([]any, 0, len(keys))
	for start, batch := 0, 0; start < len(keys); start, batch = start+batchSize, batch+1 {
		group := keys[start:min(start+batchSize, len(keys))]

		callCtx, cancel := storeopt.CallContext(ctx, w.options.CallTimeout)
		cmds, err := w.getter.PipelinedGet(callCtx, group)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("xredis: batch %d: %w", batch, err)
		}

		vals, err := groupValues(batch, group, cmds)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	return out, nil
}

// groupValues 校验一组 pipeline 结果并按序取值。
func groupValues(batch int, keys []string, cmds []redis.Cmder) ([]any, error) {
	if len(cmds) != len(keys) {
		return nil, fmt.Errorf("%w: batch %d returned %d results for %d keys", ErrInconsistent, batch, len(cmds), len(keys))
	}

	vals := make([]any, len(keys))
	for i, cmd := range cmds {
		sc, ok := cmd.(*redis.StringCmd)
		if !ok || sc == nil {
			return nil, fmt.Errorf("%w: batch %d entry %d is %T", ErrInconsistent, batch, i, cmd)
		}
		v, err := sc.Result()
		switch {
		case errors.Is(err, redis.Nil):
			vals[i] = nil
		case err != nil:
			return nil, &StoreError{Key: keys[i], Msg: err.Error(), Err: err}
		default:
			vals[i] = v
		}
	}
	return vals, nil
}
