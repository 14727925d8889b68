package xredis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/kelchy/go-lib/pkg/observability/xlog"
)

// Commands 常用命令的便捷封装。
//
// 值为 string/[]byte 时原样写入，其它类型编码为 JSON。
// 带 ttl 参数的写命令在 ttl > 0 时于同一 pipeline 追加 EXPIRE。
type Commands interface {
	// Get 读取字符串值，found 为 false 表示 key 不存在。
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// GetValue 读取值；以 { 或 [ 开头的值按 JSON 解码，不存在返回 nil。
	GetValue(ctx context.Context, key string) (any, error)
	// Set 写入值。NX/XX 条件不满足时返回 false。
	Set(ctx context.Context, key string, value any, opts SetOptions) (bool, error)
	// Del 删除 key，返回删除数量。
	Del(ctx context.Context, keys ...string) (int64, error)
	HSet(ctx context.Context, key string, fields map[string]any, ttl time.Duration) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HDel 删除哈希字段，返回删除数量。
	HDel(ctx context.Context, key string, fields ...string) (int64, error)
	// HIncrBy 对哈希字段做整数自增，返回自增后的值。
	HIncrBy(ctx context.Context, key, field string, incr int64, ttl time.Duration) (int64, error)
	// MSet 批量写入。集群模式下所有 key 必须落在同一 slot。
	MSet(ctx context.Context, values map[string]any) error
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RPush(ctx context.Context, key string, ttl time.Duration, values ...any) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	// LRem 删除列表中 count 个等于 element 的元素，返回删除数量。
	LRem(ctx context.Context, key string, count int64, element any) (int64, error)
	SAdd(ctx context.Context, key string, ttl time.Duration, members ...any) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	// TTL 返回剩余过期时间。沿用 go-redis 约定：key 不存在为 -2，没有过期时间为 -1（均为纳秒值）。
	TTL(ctx context.Context, key string) (time.Duration, error)
	// Keys 返回匹配 pattern 的 key。KEYS 会阻塞服务端，仅用于运维和小数据集；
	// 集群模式下只查询被路由到的单个节点。
	Keys(ctx context.Context, pattern string) ([]string, error)
	Publish(ctx context.Context, channel string, message any) (int64, error)
	// Subscribe 订阅频道，服务端确认后返回。调用方负责 Close 订阅。
	Subscribe(ctx context.Context, channels ...string) (Subscription, error)
}

// Subscription 一次订阅。
type Subscription interface {
	// Messages 返回消息通道，Close 后通道关闭。
	Messages() <-chan *redis.Message
	// Close 取消订阅并释放连接。
	Close() error
}

type subscription struct {
	ps *redis.PubSub
}

func (s subscription) Messages() <-chan *redis.Message { return s.ps.Channel() }
func (s subscription) Close() error                    { return s.ps.Close() }

// SetOptions Set 参数。NX 与 XX 互斥。
type SetOptions struct {
	TTL time.Duration
	NX  bool
	XX  bool
}

var errNXWithXX = errors.New("xredis: NX and XX are mutually exclusive")

func encode(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string, []byte:
		return val, nil
	case int, int64, int32, uint, uint64, uint32, float64, float32, bool:
		return val, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("xredis: encode value: %w", err)
	}
	return data, nil
}

func encodeAll(values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		enc, err := encode(v)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

// decodeValue 以 { 或 [ 开头时尝试 JSON 解码，失败则保留原字符串。
func decodeValue(s string) any {
	trimmed := bytes.TrimSpace([]byte(s))
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return s
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return s
	}
	return v
}

// pipelineWithExpire 在同一 pipeline 中执行 write，并在 ttl > 0 时追加 EXPIRE。
func (w *redisWrapper) pipelineWithExpire(ctx context.Context, key string, ttl time.Duration, write func(ctx context.Context, pipe redis.Pipeliner) *redis.IntCmd) (int64, error) {
	var n int64
	err := w.call(ctx, key, func(ctx context.Context) error {
		pipe := w.client.Pipeline()
		cmd := write(ctx, pipe)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		n = cmd.Val()
		return nil
	})
	return n, err
}

func (w *redisWrapper) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		val   string
		found bool
	)
	err := w.call(ctx, key, func(ctx context.Context) error {
		v, err := w.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		val, found = v, true
		return nil
	})
	return val, found, err
}

func (w *redisWrapper) GetValue(ctx context.Context, key string) (any, error) {
	val, found, err := w.Get(ctx, key)
	if err != nil || !found {
		return nil, err
	}
	return decodeValue(val), nil
}

func (w *redisWrapper) Set(ctx context.Context, key string, value any, opts SetOptions) (bool, error) {
	if opts.NX && opts.XX {
		return false, errNXWithXX
	}
	enc, err := encode(value)
	if err != nil {
		return false, err
	}

	args := redis.SetArgs{TTL: opts.TTL}
	switch {
	case opts.NX:
		args.Mode = "NX"
	case opts.XX:
		args.Mode = "XX"
	}

	var ok bool
	err = w.call(ctx, key, func(ctx context.Context) error {
		err := w.client.SetArgs(ctx, key, enc, args).Err()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		ok = err == nil
		return err
	})
	return ok, err
}

func (w *redisWrapper) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, ErrEmptyList
	}
	var n int64
	err := w.call(ctx, keys[0], func(ctx context.Context) error {
		var err error
		n, err = w.client.Del(ctx, keys...).Result()
		return err
	})
	return n, err
}

func (w *redisWrapper) HSet(ctx context.Context, key string, fields map[string]any, ttl time.Duration) (int64, error) {
	if len(fields) == 0 {
		return 0, ErrEmptyList
	}
	args := make([]any, 0, len(fields)*2)
	for f, v := range fields {
		enc, err := encode(v)
		if err != nil {
			return 0, err
		}
		args = append(args, f, enc)
	}
	return w.pipelineWithExpire(ctx, key, ttl, func(ctx context.Context, pipe redis.Pipeliner) *redis.IntCmd {
		return pipe.HSet(ctx, key, args...)
	})
}

func (w *redisWrapper) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	var m map[string]string
	err := w.call(ctx, key, func(ctx context.Context) error {
		var err error
		m, err = w.client.HGetAll(ctx, key).Result()
		return err
	})
	return m, err
}

func (w *redisWrapper) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, ErrEmptyList
	}
	var n int64
	err := w.call(ctx, key, func(ctx context.Context) error {
		var err error
		n, err = w.client.HDel(ctx, key, fields...).Result()
		return err
	})
	return n, err
}

func (w *redisWrapper) HIncrBy(ctx context.Context, key, field string, incr int64, ttl time.Duration) (int64, error) {
	return w.pipelineWithExpire(ctx, key, ttl, func(ctx context.Context, pipe redis.Pipeliner) *redis.IntCmd {
		return pipe.HIncrBy(ctx, key, field, incr)
	})
}

func (w *redisWrapper) MSet(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return ErrEmptyList
	}
	args := make([]any, 0, len(values)*2)
	first := ""
	for k, v := range values {
		if k == "" {
			return ErrEmptyKey
		}
		enc, err := encode(v)
		if err != nil {
			return err
		}
		if first == "" {
			first = k
		}
		args = append(args, k, enc)
	}
	return w.call(ctx, first, func(ctx context.Context) error {
		return w.client.MSet(ctx, args...).Err()
	})
}

func (w *redisWrapper) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return w.pipelineWithExpire(ctx, key, ttl, func(ctx context.Context, pipe redis.Pipeliner) *redis.IntCmd {
		return pipe.Incr(ctx, key)
	})
}

func (w *redisWrapper) RPush(ctx context.Context, key string, ttl time.Duration, values ...any) (int64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyList
	}
	enc, err := encodeAll(values)
	if err != nil {
		return 0, err
	}
	return w.pipelineWithExpire(ctx, key, ttl, func(ctx context.Context, pipe redis.Pipeliner) *redis.IntCmd {
		return pipe.RPush(ctx, key, enc...)
	})
}

func (w *redisWrapper) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	var out []string
	err := w.call(ctx, key, func(ctx context.Context) error {
		var err error
		out, err = w.client.LRange(ctx, key, start, stop).Result()
		return err
	})
	return out, err
}

func (w *redisWrapper) LRem(ctx context.Context, key string, count int64, element any) (int64, error) {
	enc, err := encode(element)
	if err != nil {
		return 0, err
	}
	var n int64
	err = w.call(ctx, key, func(ctx context.Context) error {
		var err error
		n, err = w.client.LRem(ctx, key, count, enc).Result()
		return err
	})
	return n, err
}

func (w *redisWrapper) SAdd(ctx context.Context, key string, ttl time.Duration, members ...any) (int64, error) {
	if len(members) == 0 {
		return 0, ErrEmptyList
	}
	enc, err := encodeAll(members)
	if err != nil {
		return 0, err
	}
	return w.pipelineWithExpire(ctx, key, ttl, func(ctx context.Context, pipe redis.Pipeliner) *redis.IntCmd {
		return pipe.SAdd(ctx, key, enc...)
	})
}

func (w *redisWrapper) SMembers(ctx context.Context, key string) ([]string, error) {
	var out []string
	err := w.call(ctx, key, func(ctx context.Context) error {
		var err error
		out, err = w.client.SMembers(ctx, key).Result()
		return err
	})
	return out, err
}

func (w *redisWrapper) TTL(ctx context.Context, key string) (time.Duration, error) {
	var d time.Duration
	err := w.call(ctx, key, func(ctx context.Context) error {
		var err error
		d, err = w.client.TTL(ctx, key).Result()
		return err
	})
	return d, err
}

func (w *redisWrapper) Keys(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	err := w.call(ctx, pattern, func(ctx context.Context) error {
		var err error
		out, err = w.client.Keys(ctx, pattern).Result()
		return err
	})
	return out, err
}

func (w *redisWrapper) Publish(ctx context.Context, channel string, message any) (int64, error) {
	enc, err := encode(message)
	if err != nil {
		return 0, err
	}
	var n int64
	err = w.call(ctx, channel, func(ctx context.Context) error {
		var err error
		n, err = w.client.Publish(ctx, channel, enc).Result()
		return err
	})
	return n, err
}

func (w *redisWrapper) Subscribe(ctx context.Context, channels ...string) (Subscription, error) {
	if len(channels) == 0 {
		return nil, ErrEmptyList
	}
	var sub Subscription
	err := w.call(ctx, channels[0], func(callCtx context.Context) error {
		ps := w.client.Subscribe(ctx, channels...)
		// 等待第一条订阅确认，保证返回后发布的消息不会丢失
		if _, err := ps.Receive(callCtx); err != nil {
			_ = ps.Close()
			return err
		}
		sub = subscription{ps: ps}
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.logger.Debug(ctx, "redis subscribed", xlog.Count(len(channels)))
	return sub, nil
}
