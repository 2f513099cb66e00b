package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"receivables/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLoginGuard_BlocksAtMaxFailures(t *testing.T) {
	_, client := newMiniRedis(t)
	guard := NewLoginGuard(client, 3, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, guard.RecordFailure(ctx, "dayou"))
	}
	blocked, err := guard.Blocked(ctx, "dayou")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, guard.RecordFailure(ctx, "dayou"))
	blocked, err = guard.Blocked(ctx, "dayou")
	require.NoError(t, err)
	assert.True(t, blocked)

	// 其他用户名不受影响
	blocked, err = guard.Blocked(ctx, "boss")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginGuard_WindowSetOnFirstFailureOnly(t *testing.T) {
	mr, client := newMiniRedis(t)
	guard := NewLoginGuard(client, 3, time.Minute)
	ctx := context.Background()
	key := failureKey("dayou")

	require.NoError(t, guard.RecordFailure(ctx, "dayou"))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(20 * time.Second)
	require.NoError(t, guard.RecordFailure(ctx, "dayou"))
	assert.Equal(t, 40*time.Second, mr.TTL(key), "后续失败不重置窗口")

	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	// 窗口结束后计数消失
	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists(key))
	blocked, err := guard.Blocked(ctx, "dayou")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginGuard_Reset(t *testing.T) {
	mr, client := newMiniRedis(t)
	guard := NewLoginGuard(client, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, guard.RecordFailure(ctx, "dayou"))
	blocked, err := guard.Blocked(ctx, "dayou")
	require.NoError(t, err)
	require.True(t, blocked)

	require.NoError(t, guard.Reset(ctx, "dayou"))
	assert.False(t, mr.Exists(failureKey("dayou")))

	blocked, err = guard.Blocked(ctx, "dayou")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestInitRedis_Reachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := InitRedis(&config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
