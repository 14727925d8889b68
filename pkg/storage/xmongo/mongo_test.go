package xmongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/kelchy/go-lib/pkg/distributed/xdlock"
)

func newTestWrapper(opts ...Option) (*mongoWrapper, *mockClientOps) {
	ops := &mockClientOps{sessions: 3}
	return newWrapper(nil, ops, opts...), ops
}

func withFakeLocker(w *mongoWrapper) *fakeLocker {
	f := newFakeLocker()
	w.locker.Store(&lockHolder{l: f})
	return f
}

func TestNew_NilClient(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestHealth(t *testing.T) {
	w, ops := newTestWrapper()
	ctx := context.Background()

	require.NoError(t, w.Health(ctx))
	ops.pingErr = errors.New("no reachable servers")
	assert.ErrorContains(t, w.Health(ctx), "no reachable servers")

	stats := w.Stats()
	assert.Equal(t, int64(2), stats.PingCount)
	assert.Equal(t, int64(1), stats.PingErrors)
	assert.Equal(t, 3, stats.SessionsInProgress)
}

func TestClose(t *testing.T) {
	w, ops := newTestWrapper()

	//nolint:staticcheck // nil ctx 被替换为 Background
	require.NoError(t, w.Close(nil))
	assert.True(t, ops.disconnected)
	assert.ErrorIs(t, w.Close(context.Background()), ErrClosed)
	assert.ErrorIs(t, w.Health(context.Background()), ErrClosed)
	assert.ErrorIs(t, w.EnableLock(context.Background()), ErrClosed)

	_, err := w.Lock(context.Background(), "k", nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClose_DisconnectError(t *testing.T) {
	w, ops := newTestWrapper()
	ops.disconnectErr = errors.New("timeout")
	assert.ErrorContains(t, w.Close(context.Background()), "timeout")
}

func TestLock_DisabledByDefault(t *testing.T) {
	w, _ := newTestWrapper()
	ctx := context.Background()

	_, err := w.Lock(ctx, "job", nil)
	assert.ErrorIs(t, err, xdlock.ErrDisabled)
	_, err = w.Unlock(ctx, "job")
	assert.ErrorIs(t, err, xdlock.ErrDisabled)

	// 未配置集合时无法启用
	assert.ErrorIs(t, w.EnableLock(ctx), xdlock.ErrDisabled)

	// 禁用优先于 key 校验
	_, err = w.Lock(ctx, "", nil)
	assert.ErrorIs(t, err, xdlock.ErrDisabled)
}

func TestLock_InvalidKey(t *testing.T) {
	w, _ := newTestWrapper()
	withFakeLocker(w)
	ctx := context.Background()

	_, err := w.Lock(ctx, "", nil)
	assert.ErrorIs(t, err, xdlock.ErrInvalidKey)
	_, err = w.Unlock(ctx, "")
	assert.ErrorIs(t, err, xdlock.ErrInvalidKey)
}

func TestLock_Cycle(t *testing.T) {
	w, _ := newTestWrapper()
	fake := withFakeLocker(w)
	ctx := context.Background()

	ok, err := w.Lock(ctx, "job:42", "worker-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = w.Lock(ctx, "job:42", "worker-b")
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := w.Unlock(ctx, "job:42")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Deleted)

	res, err = w.Unlock(ctx, "job:42")
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)

	fake.lockErr = xdlock.ErrAnomaly
	_, err = w.Lock(ctx, "job:43", nil)
	assert.ErrorIs(t, err, xdlock.ErrAnomaly)

	stats := w.Stats()
	assert.Equal(t, int64(5), stats.LockOps)
	assert.Equal(t, int64(1), stats.LockErrors)
}

func TestEnableLock_AlreadyEnabled(t *testing.T) {
	w, _ := newTestWrapper(WithLock("app", "locks"))
	fake := withFakeLocker(w)

	require.NoError(t, w.EnableLock(context.Background()))
	assert.Same(t, fake, w.locker.Load().l)
}

func TestEnableLock_IndexFailure(t *testing.T) {
	client, err := mongo.Connect(options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100 * time.Millisecond))
	require.NoError(t, err)

	m, err := New(client, WithLock("app", "locks"))
	require.NoError(t, err)
	defer m.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, m.EnableLock(ctx))

	_, err = m.Lock(ctx, "job", nil)
	assert.ErrorIs(t, err, xdlock.ErrDisabled)
}

func TestNewFromConfig_Errors(t *testing.T) {
	_, err := NewFromConfig(context.Background(), DefaultConfig())
	assert.ErrorIs(t, err, ErrNoURI)

	noDB := DefaultConfig()
	noDB.URI = "mongodb://127.0.0.1:1"
	noDB.LockCollection = "locks"
	_, err = NewFromConfig(context.Background(), noDB)
	assert.ErrorIs(t, err, ErrNoLockDatabase)

	cfg := DefaultConfig()
	cfg.URI = "mongodb://127.0.0.1:1"
	cfg.ServerSelectionTimeout = 100 * time.Millisecond
	cfg.ConnectAttempts = 2
	cfg.ConnectDelay = time.Millisecond

	_, err = NewFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	o := defaultOptions()
	WithHealthTimeout(0)(o)
	assert.Equal(t, 5*time.Second, o.HealthTimeout)
	WithHealthTimeout(time.Second)(o)
	assert.Equal(t, time.Second, o.HealthTimeout)

	assert.False(t, o.lockConfigured())
	WithLock("app", "")(o)
	assert.False(t, o.lockConfigured())
	WithLock("app", "locks")(o)
	assert.True(t, o.lockConfigured())

	WithLockOptions(xdlock.WithKeyPrefix("x_"))(o)
	assert.Len(t, o.LockOptions, 1)
}
