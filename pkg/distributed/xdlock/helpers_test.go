package xdlock

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/observability/xmetrics"
)

// stubKV 可控的 KVStore，用于覆盖 miniredis 无法构造的响应。
type stubKV struct {
	mu      sync.Mutex
	set     func(ctx context.Context) *redis.StatusCmd
	delErr  error
	delKeys []string
	setArgs []redis.SetArgs
	values  []any
}

func (s *stubKV) SetArgs(ctx context.Context, _ string, value any, a redis.SetArgs) *redis.StatusCmd {
	s.mu.Lock()
	s.setArgs = append(s.setArgs, a)
	s.values = append(s.values, value)
	s.mu.Unlock()
	return s.set(ctx)
}

func (s *stubKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delKeys = append(s.delKeys, keys...)
	return redis.NewIntResult(int64(len(keys)), s.delErr)
}

func (s *stubKV) deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.delKeys...)
}

func statusReply(val string, err error) func(context.Context) *redis.StatusCmd {
	return func(context.Context) *redis.StatusCmd {
		return redis.NewStatusResult(val, err)
	}
}

func bufferLogger(t *testing.T) (xlog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetFormat("json").
		SetLevel(xlog.LevelDebug).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return logger, &buf
}

// recordingObserver 记录每个跨度的操作名和结果。
type recordingObserver struct {
	mu      sync.Mutex
	results map[string][]xmetrics.Result
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{results: make(map[string][]xmetrics.Result)}
}

func (o *recordingObserver) Start(ctx context.Context, opts xmetrics.SpanOptions) (context.Context, xmetrics.Span) {
	return ctx, recordingSpan{o: o, op: opts.Operation}
}

func (o *recordingObserver) get(op string) []xmetrics.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.results[op]
}

type recordingSpan struct {
	o  *recordingObserver
	op string
}

func (s recordingSpan) End(r xmetrics.Result) {
	s.o.mu.Lock()
	defer s.o.mu.Unlock()
	s.o.results[s.op] = append(s.o.results[s.op], r)
}
