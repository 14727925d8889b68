package xmongo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/distributed/xdlock"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/observability/xmetrics"
)

const componentName = "xmongo"

// Mongo MongoDB 包装器接口。
type Mongo interface {
	// Client 返回底层客户端。
	Client() *mongo.Client

	// Health 以 Primary 读偏好执行 Ping。
	Health(ctx context.Context) error

	// Stats 返回统计信息。
	Stats() Stats

	// Close 断开连接，重复调用返回 ErrClosed。
	Close(ctx context.Context) error

	// EnableLock 创建锁集合的 TTL 索引并启用锁。重复调用无副作用。
	// 未通过 WithLock 配置锁集合时返回 xdlock.ErrDisabled。
	EnableLock(ctx context.Context) error

	// Lock 插入锁文档。锁被他人持有时返回 (false, nil)。
	Lock(ctx context.Context, key string, value any) (bool, error)

	// Unlock 删除锁文档，返回删除结果。
	Unlock(ctx context.Context, key string) (*xdlock.UnlockResult, error)
}

// Stats 统计信息。
type Stats struct {
	PingCount  int64
	PingErrors int64
	LockOps    int64
	LockErrors int64
	// SessionsInProgress 活跃会话数，driver v2 不暴露更细的连接池信息。
	SessionsInProgress int
}

// clientOperations *mongo.Client 中被包装器使用的部分，便于注入 mock。
type clientOperations interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
	NumberSessionsInProgress() int
}

// documentLocker *xdlock.MongoLocker 中被包装器使用的部分。
type documentLocker interface {
	TryLock(ctx context.Context, key string, opts ...xdlock.LockOption) (bool, error)
	Release(ctx context.Context, key string) (*xdlock.UnlockResult, error)
}

type mongoWrapper struct {
	client    *mongo.Client
	clientOps clientOperations
	options   *Options
	logger    xlog.Logger

	lockMu sync.Mutex
	locker atomic.Pointer[lockHolder]

	health  storeopt.HealthCounter
	lockOps storeopt.OpCounter
	closed  atomic.Bool
}

type lockHolder struct {
	l documentLocker
}

var _ Mongo = (*mongoWrapper)(nil)

// New 包装已连接的客户端。锁需随后调用 EnableLock 启用。
func New(client *mongo.Client, opts ...Option) (Mongo, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return newWrapper(client, client, opts...), nil
}

func newWrapper(client *mongo.Client, ops clientOperations, opts ...Option) *mongoWrapper {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &mongoWrapper{
		client:    client,
		clientOps: ops,
		options:   o,
		logger:    o.Logger.With(xlog.Component(componentName)),
	}
}

func (w *mongoWrapper) Client() *mongo.Client {
	return w.client
}

func (w *mongoWrapper) Health(ctx context.Context) (err error) {
	if w.closed.Load() {
		return ErrClosed
	}

	ctx, span := xmetrics.Start(ctx, w.options.Observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "health",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.String("db.system", "mongodb")},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	w.health.IncPing()
	ctx, cancel := storeopt.HealthContext(ctx, w.options.HealthTimeout)
	defer cancel()

	if err = w.clientOps.Ping(ctx, readpref.Primary()); err != nil {
		w.health.IncPingError()
		return fmt.Errorf("xmongo health: %w", err)
	}
	return nil
}

func (w *mongoWrapper) Stats() Stats {
	return Stats{
		PingCount:          w.health.PingCount(),
		PingErrors:         w.health.PingErrors(),
		LockOps:            w.lockOps.Total(),
		LockErrors:         w.lockOps.Errors(),
		SessionsInProgress: w.clientOps.NumberSessionsInProgress(),
	}
}

// Close 断开连接。nil ctx 视为 context.Background()。
// Disconnect 失败时不回滚关闭状态。
func (w *mongoWrapper) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if err := w.clientOps.Disconnect(ctx); err != nil {
		return fmt.Errorf("xmongo close: %w", err)
	}
	return nil
}

func (w *mongoWrapper) EnableLock(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}
	if !w.options.lockConfigured() {
		return xdlock.ErrDisabled
	}

	w.lockMu.Lock()
	defer w.lockMu.Unlock()
	if w.locker.Load() != nil {
		return nil
	}

	coll := w.client.Database(w.options.LockDatabase).Collection(w.options.LockCollection)
	opts := append([]xdlock.Option{
		xdlock.WithLogger(w.options.Logger),
		xdlock.WithObserver(w.options.Observer),
	}, w.options.LockOptions...)

	locker, err := xdlock.NewMongoLocker(ctx, coll, opts...)
	if err != nil {
		return fmt.Errorf("xmongo: enable lock: %w", err)
	}
	w.locker.Store(&lockHolder{l: locker})
	w.logger.Info(ctx, "document lock enabled",
		xlog.Key(w.options.LockDatabase+"."+w.options.LockCollection))
	return nil
}

// activeLocker 依次检查关闭、启用状态和 key。
func (w *mongoWrapper) activeLocker(key string) (documentLocker, error) {
	if w.closed.Load() {
		return nil, ErrClosed
	}
	h := w.locker.Load()
	if h == nil {
		return nil, xdlock.ErrDisabled
	}
	if key == "" {
		return nil, xdlock.ErrInvalidKey
	}
	return h.l, nil
}

func (w *mongoWrapper) Lock(ctx context.Context, key string, value any) (bool, error) {
	l, err := w.activeLocker(key)
	if err != nil {
		return false, err
	}
	ok, err := l.TryLock(ctx, key, xdlock.WithValue(value))
	w.lockOps.Observe(err)
	return ok, err
}

func (w *mongoWrapper) Unlock(ctx context.Context, key string) (*xdlock.UnlockResult, error) {
	l, err := w.activeLocker(key)
	if err != nil {
		return nil, err
	}
	res, err := l.Release(ctx, key)
	w.lockOps.Observe(err)
	return res, err
}
