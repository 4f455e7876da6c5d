package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisSlot(t *testing.T) *RedisSlot {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisSlot(client, "lifeline:test-slot")
}

func TestRedisSlotEmptyRead(t *testing.T) {
	slot := newTestRedisSlot(t)
	_, err := slot.Read(context.Background())
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestRedisSlotWriteRead(t *testing.T) {
	ctx := context.Background()
	slot := newTestRedisSlot(t)

	require.NoError(t, slot.Write(ctx, []byte(`{"staff":[]}`)))
	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"staff":[]}`), data)

	// 整块覆盖写
	require.NoError(t, slot.Write(ctx, []byte("v2")))
	data, err = slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestRedisSlotClear(t *testing.T) {
	ctx := context.Background()
	slot := newTestRedisSlot(t)

	require.NoError(t, slot.Write(ctx, []byte("data")))
	require.NoError(t, slot.Clear(ctx))
	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)
}
