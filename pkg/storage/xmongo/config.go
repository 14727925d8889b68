package xmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/distributed/xdlock"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
)

// Config 连接配置，可由 xconf 加载。
type Config struct {
	URI                    string        `koanf:"uri"`
	ConnectTimeout         time.Duration `koanf:"connect_timeout"`
	ServerSelectionTimeout time.Duration `koanf:"server_selection_timeout"`
	MaxPoolSize            uint64        `koanf:"max_pool_size"`
	ConnectAttempts        int           `koanf:"connect_attempts"`
	ConnectDelay           time.Duration `koanf:"connect_delay"`

	// Database/LockCollection 非空时连接后自动启用文档锁。
	Database       string        `koanf:"database"`
	LockCollection string        `koanf:"lock_collection"`
	LockTTL        time.Duration `koanf:"lock_ttl"`
	CallTimeout    time.Duration `koanf:"call_timeout"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		ConnectAttempts:        storeopt.DefaultConnectAttempts,
		ConnectDelay:           storeopt.DefaultConnectDelay,
		LockTTL:                xdlock.DefaultLockTTL,
		CallTimeout:            storeopt.DefaultCallTimeout,
	}
}

func (c Config) clientOptions() *options.ClientOptions {
	co := options.Client().ApplyURI(c.URI)
	if c.ConnectTimeout > 0 {
		co.SetConnectTimeout(c.ConnectTimeout)
	}
	if c.ServerSelectionTimeout > 0 {
		co.SetServerSelectionTimeout(c.ServerSelectionTimeout)
	}
	if c.MaxPoolSize > 0 {
		co.SetMaxPoolSize(c.MaxPoolSize)
	}
	return co
}

// NewFromConfig 建立连接并 Ping（带重试），配置了锁集合时同时启用文档锁。
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (Mongo, error) {
	if cfg.URI == "" {
		return nil, ErrNoURI
	}
	if cfg.LockCollection != "" && cfg.Database == "" {
		return nil, ErrNoLockDatabase
	}

	client, err := mongo.Connect(cfg.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("xmongo: connect: %w", err)
	}

	lockOpts := []xdlock.Option{xdlock.WithLockTTL(cfg.LockTTL)}
	if cfg.CallTimeout > 0 {
		lockOpts = append(lockOpts, xdlock.WithCallTimeout(cfg.CallTimeout))
	}
	base := []Option{WithLockOptions(lockOpts...)}
	if cfg.LockCollection != "" {
		base = append(base, WithLock(cfg.Database, cfg.LockCollection))
	}
	w := newWrapper(client, client, append(base, opts...)...)

	err = storeopt.PingWithRetry(ctx, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}, storeopt.ConnectOptions{
		Attempts: cfg.ConnectAttempts,
		Delay:    cfg.ConnectDelay,
		OnRetry: func(attempt int, err error) {
			w.logger.Warn(ctx, "mongo ping failed, retrying", xlog.Count(attempt), xlog.Err(err))
		},
	})
	if err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("xmongo: ping: %w", err)
	}

	if w.options.lockConfigured() {
		if err := w.EnableLock(ctx); err != nil {
			_ = w.Close(context.WithoutCancel(ctx))
			return nil, err
		}
	}
	return w, nil
}
