package xredis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
)

// Config 连接配置，字段带 koanf 标签，可由 xconf 直接加载。
// 建议从 DefaultConfig 开始再覆盖，零值字段沿用包装器默认值。
type Config struct {
	Addrs    []string `koanf:"addrs"`
	Username string   `koanf:"username"`
	Password string   `koanf:"password"`
	// DB 仅单机模式有效。
	DB int `koanf:"db"`
	// Cluster 为 true 时使用集群客户端，默认 true。
	Cluster      bool          `koanf:"cluster"`
	PoolSize     int           `koanf:"pool_size"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// CallTimeout 单次调用等待上限。
	CallTimeout time.Duration `koanf:"call_timeout"`
	// BatchSize MultiGet 默认批大小，0 表示单次 MGET。
	BatchSize int `koanf:"batch_size"`
	// LockKeyPrefix 锁 key 前缀，nil 沿用默认 "lock:"，允许配置为空串。
	LockKeyPrefix   *string       `koanf:"lock_key_prefix"`
	ConnectAttempts int           `koanf:"connect_attempts"`
	ConnectDelay    time.Duration `koanf:"connect_delay"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Cluster:         true,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		CallTimeout:     storeopt.DefaultCallTimeout,
		ConnectAttempts: storeopt.DefaultConnectAttempts,
		ConnectDelay:    storeopt.DefaultConnectDelay,
	}
}

func (c Config) newClient() redis.UniversalClient {
	if c.Cluster {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        c.Addrs,
			Username:     c.Username,
			Password:     c.Password,
			PoolSize:     c.PoolSize,
			DialTimeout:  c.DialTimeout,
			ReadTimeout:  c.ReadTimeout,
			WriteTimeout: c.WriteTimeout,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:         c.Addrs[0],
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	})
}

// NewFromConfig 按配置建立连接，PING 成功后返回包装器。
// PING 按 ConnectAttempts/ConnectDelay 重试，全部失败时关闭客户端并返回最后一次错误。
// opts 在配置项之后应用，可以覆盖配置。
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (Redis, error) {
	if len(cfg.Addrs) == 0 {
		return nil, ErrNoAddrs
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	logger := o.Logger.With(xlog.Component(componentName))

	client := cfg.newClient()
	err := storeopt.PingWithRetry(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, storeopt.ConnectOptions{
		Attempts: cfg.ConnectAttempts,
		Delay:    cfg.ConnectDelay,
		OnRetry: func(attempt int, err error) {
			logger.Warn(ctx, "redis ping failed, retrying",
				xlog.Count(attempt), xlog.Err(err))
		},
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("xredis: connect %v: %w", cfg.Addrs, err)
	}
	logger.Info(ctx, "redis connected", xlog.Count(len(cfg.Addrs)))

	base := []Option{WithDefaultBatchSize(cfg.BatchSize)}
	if cfg.CallTimeout > 0 {
		base = append(base, WithCallTimeout(cfg.CallTimeout))
	}
	if cfg.LockKeyPrefix != nil {
		base = append(base, WithLockKeyPrefix(*cfg.LockKeyPrefix))
	}
	return New(client, append(base, opts...)...)
}
