package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisLock_AcquireThenBlocksOtherHolder(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	first := NewRedisLock(client, "rategate:1", time.Minute)
	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	second := NewRedisLock(client, "rategate:1", time.Minute)
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, ok, "a second holder must not acquire the same bucket key")
}

func TestRedisLock_OwnerReleaseAllowsReacquire(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	owner := NewRedisLock(client, "rategate:2", time.Minute)
	ok, err := owner.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, owner.Release(ctx))

	other := NewRedisLock(client, "rategate:2", time.Minute)
	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok, "lock must be acquirable again after the owner releases it")
}
