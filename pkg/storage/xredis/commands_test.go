package xredis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_GetSet(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	_, found, err := r.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := r.Set(ctx, "s", "plain", SetOptions{TTL: time.Minute})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("s"))

	val, found, err := r.Get(ctx, "s")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "plain", val)

	ok, err = r.Set(ctx, "s", "again", SetOptions{NX: true})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Set(ctx, "absent", "x", SetOptions{XX: true})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Set(ctx, "s", "x", SetOptions{NX: true, XX: true})
	assert.Error(t, err)

	_, err = r.Set(ctx, "", "x", SetOptions{})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestCommands_GetValueDecodesJSON(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	_, err := r.Set(ctx, "obj", map[string]any{"n": 1, "tags": []string{"a"}}, SetOptions{})
	require.NoError(t, err)
	require.NoError(t, mr.Set("arr", `[1,2]`))
	require.NoError(t, mr.Set("broken", `{not json`))
	require.NoError(t, mr.Set("num", "42"))

	v, err := r.GetValue(ctx, "obj")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": float64(1), "tags": []any{"a"}}, v)

	v, err = r.GetValue(ctx, "arr")
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, v)

	v, err = r.GetValue(ctx, "broken")
	require.NoError(t, err)
	assert.Equal(t, "{not json", v)

	v, err = r.GetValue(ctx, "num")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, err = r.GetValue(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCommands_HashWithTTL(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	n, err := r.HSet(ctx, "h", map[string]any{"a": "1", "b": 2}, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 30*time.Second, mr.TTL("h"))

	m, err := r.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, m)

	_, err = r.HSet(ctx, "h", nil, 0)
	assert.ErrorIs(t, err, ErrEmptyList)
}

func TestCommands_ListAndSet(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	n, err := r.RPush(ctx, "l", 0, "a", map[string]int{"b": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Zero(t, mr.TTL("l"))

	items, err := r.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `{"b":1}`}, items)

	_, err = r.RPush(ctx, "l", 0)
	assert.ErrorIs(t, err, ErrEmptyList)

	n, err = r.SAdd(ctx, "s", time.Minute, "x", "y", "x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, time.Minute, mr.TTL("s"))

	members, err := r.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, members)

	_, err = r.SAdd(ctx, "s", 0)
	assert.ErrorIs(t, err, ErrEmptyList)
}

func TestCommands_IncrDelTTLPublish(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	n, err := r.Incr(ctx, "c", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = r.Incr(ctx, "c", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	d, err := r.TTL(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	mr.FastForward(11 * time.Second)
	_, found, err := r.Get(ctx, "c")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, mr.Set("x", "1"))
	deleted, err := r.Del(ctx, "x", "nope")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = r.Del(ctx)
	assert.ErrorIs(t, err, ErrEmptyList)

	receivers, err := r.Publish(ctx, "events", map[string]string{"type": "done"})
	require.NoError(t, err)
	assert.Zero(t, receivers)
}

func TestCommands_HashHelpers(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	_, err := r.HSet(ctx, "h", map[string]any{"a": "1", "b": "2"}, 0)
	require.NoError(t, err)

	n, err := r.HIncrBy(ctx, "h", "hits", 5, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	n, err = r.HIncrBy(ctx, "h", "hits", -2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 30*time.Second, mr.TTL("h"))

	deleted, err := r.HDel(ctx, "h", "a", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	fields, err := r.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "2", "hits": "3"}, fields)

	_, err = r.HDel(ctx, "h")
	assert.ErrorIs(t, err, ErrEmptyList)
}

func TestCommands_LRem(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	_, err := r.RPush(ctx, "l", 0, "a", "b", "a", "c", "a")
	require.NoError(t, err)

	n, err := r.LRem(ctx, "l", 2, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	items, err := r.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, items)
}

func TestCommands_MSetAndKeys(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.MSet(ctx, map[string]any{"user:1": "ann", "user:2": map[string]int{"age": 3}}))
	got, err := mr.Get("user:2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":3}`, got)

	keys, err := r.Keys(ctx, "user:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user:1", "user:2"}, keys)

	assert.ErrorIs(t, r.MSet(ctx, nil), ErrEmptyList)
	assert.ErrorIs(t, r.MSet(ctx, map[string]any{"": "x"}), ErrEmptyKey)
}

func TestCommands_SubscribeReceivesPublished(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	sub, err := r.Subscribe(ctx, "events")
	require.NoError(t, err)
	defer sub.Close()

	receivers, err := r.Publish(ctx, "events", "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(1), receivers)

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, "events", msg.Channel)
		assert.Equal(t, "hello", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	_, err = r.Subscribe(ctx)
	assert.ErrorIs(t, err, ErrEmptyList)
}

func TestEncode(t *testing.T) {
	v, err := encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = encode(7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = encode(func() {})
	assert.Error(t, err)
}
