package xdlock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mopts "go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/kelchy/go-lib/internal/storeopt"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/observability/xmetrics"
)

const (
	fieldID        = "_id"
	fieldCreatedAt = "createdAt"
)

// lockDocument Mongo 锁文档。
type lockDocument struct {
	ID        string    `bson:"_id"`
	Value     string    `bson:"value"`
	Owner     string    `bson:"owner"`
	CreatedAt time.Time `bson:"createdAt"`
}

// UnlockResult 解锁结果。
type UnlockResult struct {
	// Deleted 删除的文档数，锁不存在时为 0。
	Deleted int64
}

// lockCollection MongoLocker 依赖的集合操作。
type lockCollection interface {
	InsertOne(ctx context.Context, doc any) (any, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
	EnsureTTLIndex(ctx context.Context, field string, expireAfterSeconds int32) error
}

// collectionAdapter 将 *mongo.Collection 适配为 lockCollection。
type collectionAdapter struct {
	coll *mongo.Collection
}

func (a collectionAdapter) InsertOne(ctx context.Context, doc any) (any, error) {
	res, err := a.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (a collectionAdapter) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := a.coll.DeleteOne(ctx, bson.D{{Key: fieldID, Value: id}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (a collectionAdapter) EnsureTTLIndex(ctx context.Context, field string, expireAfterSeconds int32) error {
	_, err := a.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: mopts.Index().SetExpireAfterSeconds(expireAfterSeconds),
	})
	return err
}

// MongoLocker 基于 _id 唯一约束和 TTL 索引的分布式锁。
type MongoLocker struct {
	coll        lockCollection
	logger      xlog.Logger
	observer    xmetrics.Observer
	prefix      string
	owner       string
	callTimeout time.Duration
	now         func() time.Time
}

var _ Locker = (*MongoLocker)(nil)

// NewMongoLocker 创建 Mongo 锁，并在 createdAt 字段上确保 TTL 索引存在。
//
// 索引已存在且过期时间不同时 Mongo 返回 IndexOptionsConflict，此时需要手动 collMod 或删除旧索引。
func NewMongoLocker(ctx context.Context, coll *mongo.Collection, opts ...Option) (*MongoLocker, error) {
	if coll == nil {
		return nil, ErrNilClient
	}
	return newMongoLocker(ctx, collectionAdapter{coll: coll}, opts...)
}

func newMongoLocker(ctx context.Context, coll lockCollection, opts ...Option) (*MongoLocker, error) {
	o := applyOptions(opts)
	l := &MongoLocker{
		coll:        coll,
		logger:      o.logger.With(xlog.Component(componentName)),
		observer:    o.observer,
		prefix:      o.prefix(DefaultMongoKeyPrefix),
		owner:       o.ownerOrRandom(),
		callTimeout: o.callTimeout,
		now:         time.Now,
	}

	expire := int32(o.lockTTL / time.Second)
	idxCtx, cancel := storeopt.HealthContext(ctx, storeopt.DefaultHealthTimeout)
	defer cancel()
	if err := coll.EnsureTTLIndex(idxCtx, fieldCreatedAt, expire); err != nil {
		return nil, fmt.Errorf("xdlock: ensure ttl index: %w", err)
	}
	l.logger.Debug(ctx, "lock ttl index ready", slog.Int("expire_after_seconds", int(expire)))
	return l, nil
}

// Owner 返回写入锁文档的持有者标识。
func (l *MongoLocker) Owner() string {
	return l.owner
}

// TryLock 插入锁文档。_id 冲突返回 false；
// 插入成功但返回的 _id 与请求不一致时返回 ErrAnomaly。WithTTL 被忽略。
func (l *MongoLocker) TryLock(ctx context.Context, key string, opts ...LockOption) (acquired bool, err error) {
	if validateKey(key) != nil {
		return false, ErrInvalidKey
	}
	lo := applyLockOptions(opts)
	payload, err := encodeValue(lo.value)
	if err != nil {
		return false, err
	}

	ctx, span := xmetrics.Start(ctx, l.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "mongo.try_lock",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.StoreKey(key)},
	})
	defer func() { span.End(lockResult(acquired, err)) }()

	id := l.prefix + key
	callCtx, cancel := storeopt.CallContext(ctx, l.callTimeout)
	defer cancel()

	insertedID, err := l.coll.InsertOne(callCtx, lockDocument{
		ID:        id,
		Value:     payload,
		Owner:     l.owner,
		CreatedAt: l.now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			l.logger.Debug(ctx, "lock held by another owner", xlog.Key(id))
			return false, nil
		}
		l.logger.Error(ctx, "acquire lock failed", xlog.Key(id), xlog.Err(err))
		return false, fmt.Errorf("xdlock: insert %s: %w", id, err)
	}

	if got, ok := insertedID.(string); !ok || got != id {
		l.logger.Error(ctx, "inserted lock id mismatch", xlog.Key(id), slog.Any("inserted_id", insertedID))
		return false, fmt.Errorf("%w: requested %q, got %v", ErrAnomaly, id, insertedID)
	}

	l.logger.Debug(ctx, "lock acquired", xlog.Key(id))
	return true, nil
}

// Unlock 删除锁文档，锁不存在不是错误。
func (l *MongoLocker) Unlock(ctx context.Context, key string) error {
	_, err := l.Release(ctx, key)
	return err
}

// Release 删除锁文档并返回删除结果。
func (l *MongoLocker) Release(ctx context.Context, key string) (res *UnlockResult, err error) {
	if validateKey(key) != nil {
		return nil, ErrInvalidKey
	}

	ctx, span := xmetrics.Start(ctx, l.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "mongo.unlock",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.StoreKey(key)},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	id := l.prefix + key
	callCtx, cancel := storeopt.CallContext(ctx, l.callTimeout)
	defer cancel()

	deleted, err := l.coll.DeleteByID(callCtx, id)
	if err != nil {
		l.logger.Error(ctx, "release lock failed", xlog.Key(id), xlog.Err(err))
		return nil, fmt.Errorf("xdlock: delete %s: %w", id, err)
	}
	return &UnlockResult{Deleted: deleted}, nil
}
