package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要一个真实的 Redis，通过 TEST_REDIS_ADDR 指定，例如 localhost:6379
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR 未设置")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, rdb.Ping(ctx).Err())

	return rdb
}

func TestGenerationLock(t *testing.T) {
	rdb := newTestClient(t)
	ctx := context.Background()
	key := "shift_roster:test_lock:" + t.Name()
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	first := NewGenerationLock(rdb, key, 10*time.Second)
	second := NewGenerationLock(rdb, key, 10*time.Second)

	release, err := first.Acquire(ctx)
	require.NoError(t, err)

	_, err = second.Acquire(ctx)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, release(ctx))

	release2, err := second.Acquire(ctx)
	require.NoError(t, err)

	// 释放已经不属于自己的锁不会影响新的持有者
	require.NoError(t, release(ctx))
	_, err = first.Acquire(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, release2(ctx))
}

func TestGenerationLock_Expires(t *testing.T) {
	rdb := newTestClient(t)
	ctx := context.Background()
	key := "shift_roster:test_lock:" + t.Name()
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	l := NewGenerationLock(rdb, key, 200*time.Millisecond)

	_, err := l.Acquire(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		release, err := l.Acquire(ctx)
		if err != nil {
			return false
		}
		_ = release(ctx)
		return true
	}, 3*time.Second, 50*time.Millisecond)
}
