package xredis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGetter 按 key 返回确定的标签值，可注入异常响应。
type stubGetter struct {
	mu      sync.Mutex
	batches [][]string
	mgets   int
	mget    func(keys []string) ([]any, error)
	batch   func(n int, keys []string) ([]redis.Cmder, error)
}

func (s *stubGetter) MGet(_ context.Context, keys []string) ([]any, error) {
	s.mu.Lock()
	s.mgets++
	s.mu.Unlock()
	if s.mget != nil {
		return s.mget(keys)
	}
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = tag(k)
	}
	return out, nil
}

func (s *stubGetter) PipelinedGet(_ context.Context, keys []string) ([]redis.Cmder, error) {
	s.mu.Lock()
	n := len(s.batches)
	s.batches = append(s.batches, append([]string(nil), keys...))
	s.mu.Unlock()
	if s.batch != nil {
		return s.batch(n, keys)
	}
	return taggedCmds(keys), nil
}

func tag(key string) string { return "v:" + key }

func taggedCmds(keys []string) []redis.Cmder {
	cmds := make([]redis.Cmder, len(keys))
	for i, k := range keys {
		cmds[i] = redis.NewStringResult(tag(k), nil)
	}
	return cmds
}

func withStub(t *testing.T, stub *stubGetter, opts ...Option) *redisWrapper {
	t.Helper()
	r, _ := newTestRedis(t, opts...)
	r.getter = stub
	return r
}

func keysN(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%02d", i)
	}
	return keys
}

func TestMultiGet_PreservesOrderForAnyBatchSize(t *testing.T) {
	keys := keysN(7)
	for _, size := range []int{1, 2, 3, 6, 7, 50} {
		t.Run(fmt.Sprintf("batch=%d", size), func(t *testing.T) {
			stub := &stubGetter{}
			r := withStub(t, stub)

			got, err := r.MultiGet(context.Background(), keys, WithBatchSize(size))
			require.NoError(t, err)
			require.Len(t, got, len(keys))
			for i, k := range keys {
				assert.Equal(t, tag(k), got[i])
			}

			wantBatches := (len(keys) + size - 1) / size
			require.Len(t, stub.batches, wantBatches)
			assert.Equal(t, keys[:min(size, len(keys))], stub.batches[0])
			assert.Zero(t, stub.mgets)
		})
	}
}

func TestMultiGet_SingleMGetWithoutBatchSize(t *testing.T) {
	stub := &stubGetter{}
	r := withStub(t, stub)

	got, err := r.MultiGet(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []any{"v:a", "v:b"}, got)
	assert.Equal(t, 1, stub.mgets)
	assert.Empty(t, stub.batches)
}

func TestMultiGet_DefaultBatchSize(t *testing.T) {
	stub := &stubGetter{}
	r := withStub(t, stub, WithDefaultBatchSize(2))

	_, err := r.MultiGet(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, stub.batches)

	_, err = r.MultiGet(context.Background(), []string{"a", "b", "c"}, WithBatchSize(3))
	require.NoError(t, err)
	assert.Len(t, stub.batches, 3)
}

func TestMultiGet_InvalidBatchSize(t *testing.T) {
	r, _ := newTestRedis(t)
	for _, size := range []int{0, -3} {
		got, err := r.MultiGet(context.Background(), []string{"a"}, WithBatchSize(size))
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
		assert.Nil(t, got)
	}
}

func TestMultiGet_EmptyKeys(t *testing.T) {
	stub := &stubGetter{}
	r := withStub(t, stub)

	got, err := r.MultiGet(context.Background(), nil, WithBatchSize(2))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, stub.batches)
}

func TestMultiGet_CountMismatchIsInconsistent(t *testing.T) {
	stub := &stubGetter{batch: func(n int, keys []string) ([]redis.Cmder, error) {
		if n == 1 {
			return taggedCmds(keys[:len(keys)-1]), nil
		}
		return taggedCmds(keys), nil
	}}
	r := withStub(t, stub)

	got, err := r.MultiGet(context.Background(), keysN(4), WithBatchSize(2))
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.Nil(t, got)
}

func TestMultiGet_WrongEntryShapeIsInconsistent(t *testing.T) {
	stub := &stubGetter{batch: func(_ int, keys []string) ([]redis.Cmder, error) {
		cmds := taggedCmds(keys)
		cmds[0] = redis.NewIntResult(1, nil)
		return cmds, nil
	}}
	r := withStub(t, stub)

	_, err := r.MultiGet(context.Background(), []string{"a", "b"}, WithBatchSize(2))
	assert.ErrorIs(t, err, ErrInconsistent)

	stub.batch = func(_ int, keys []string) ([]redis.Cmder, error) {
		cmds := taggedCmds(keys)
		cmds[1] = nil
		return cmds, nil
	}
	_, err = r.MultiGet(context.Background(), []string{"a", "b"}, WithBatchSize(2))
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestMultiGet_EntryErrorIsStoreError(t *testing.T) {
	stub := &stubGetter{batch: func(n int, keys []string) ([]redis.Cmder, error) {
		if n == 1 {
			return []redis.Cmder{redis.NewStringResult("", errors.New("MOVED 7365 10.0.0.3:6379"))}, nil
		}
		return taggedCmds(keys), nil
	}}
	r := withStub(t, stub)

	got, err := r.MultiGet(context.Background(), []string{"a", "b", "c"}, WithBatchSize(2))
	assert.Nil(t, got, "no partial values on failure")

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "c", se.Key)
	assert.Contains(t, se.Msg, "MOVED 7365")
	assert.Contains(t, err.Error(), "MOVED 7365")
}

func TestMultiGet_MissingEntryIsNil(t *testing.T) {
	stub := &stubGetter{batch: func(_ int, keys []string) ([]redis.Cmder, error) {
		cmds := taggedCmds(keys)
		cmds[1] = redis.NewStringResult("", redis.Nil)
		return cmds, nil
	}}
	r := withStub(t, stub)

	got, err := r.MultiGet(context.Background(), []string{"a", "b", "c"}, WithBatchSize(3))
	require.NoError(t, err)
	assert.Equal(t, []any{"v:a", nil, "v:c"}, got)
}

func TestMultiGet_TransportError(t *testing.T) {
	boom := errors.New("i/o timeout")
	stub := &stubGetter{
		batch: func(int, []string) ([]redis.Cmder, error) { return nil, boom },
		mget:  func([]string) ([]any, error) { return nil, boom },
	}
	r := withStub(t, stub)

	_, err := r.MultiGet(context.Background(), []string{"a"}, WithBatchSize(1))
	assert.ErrorIs(t, err, boom)
	_, err = r.MultiGet(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(2), r.Stats().OpErrors)
}

func TestMultiGet_MGetValidation(t *testing.T) {
	stub := &stubGetter{mget: func(keys []string) ([]any, error) {
		return []any{"x"}, nil
	}}
	r := withStub(t, stub)

	_, err := r.MultiGet(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrInconsistent)

	stub.mget = func(keys []string) ([]any, error) { return []any{int64(3), nil}, nil }
	_, err = r.MultiGet(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestMultiGet_AgainstMiniredis(t *testing.T) {
	r, mr := newTestRedis(t)
	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, mr.Set("c", "3"))
	ctx := context.Background()
	keys := []string{"a", "b", "c"}

	got, err := r.MultiGet(ctx, keys)
	require.NoError(t, err)
	assert.Equal(t, []any{"1", nil, "3"}, got)

	got, err = r.MultiGet(ctx, keys, WithBatchSize(2))
	require.NoError(t, err)
	assert.Equal(t, []any{"1", nil, "3"}, got)

	mr.HSet("h", "f", "v")
	_, err = r.MultiGet(ctx, []string{"a", "h"}, WithBatchSize(2))
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "h", se.Key)
	assert.Contains(t, se.Msg, "WRONGTYPE")
}
