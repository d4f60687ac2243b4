package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实 Redis（localhost:6379, DB 15），不可用时跳过
func setupTestRedis(t *testing.T) *Client {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping test")
	}
	rdb.FlushDB(ctx)
	t.Cleanup(func() {
		rdb.FlushDB(ctx)
		rdb.Close()
	})
	return Wrap(rdb)
}

func TestUplinkDeduper(t *testing.T) {
	c := setupTestRedis(t)
	ctx := context.Background()
	d := NewUplinkDeduper(c, time.Minute)

	first, err := d.FirstSeen(ctx, "0080E11500000001", 42)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstSeen(ctx, "0080E11500000001", 42)
	require.NoError(t, err)
	assert.False(t, again)

	other, err := d.FirstSeen(ctx, "0080E11500000001", 43)
	require.NoError(t, err)
	assert.True(t, other)

	_, err = d.FirstSeen(ctx, "", 1)
	assert.Error(t, err)

	// 释放后同一帧可再次通过
	require.NoError(t, d.Forget(ctx, "0080E11500000001", 42))
	first, err = d.FirstSeen(ctx, "0080E11500000001", 42)
	require.NoError(t, err)
	assert.True(t, first)
}

func TestStreakStore(t *testing.T) {
	c := setupTestRedis(t)
	ctx := context.Background()
	s := NewStreakStore(c)

	prev, err := s.Reset(ctx, "dolly")
	require.NoError(t, err)
	assert.Equal(t, 0, prev)

	for want := 1; want <= 3; want++ {
		n, err := s.Incr(ctx, "dolly")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	prev, err = s.Reset(ctx, "dolly")
	require.NoError(t, err)
	assert.Equal(t, 3, prev)

	n, err := s.Incr(ctx, "dolly")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "lamb:uplink:ABC:7", dedupKey("ABC", 7))
	assert.Equal(t, "lamb:streak:dolly", streakKey("dolly"))
}
