package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/content-review-api/pkg/config"
)

func newLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client), s
}

func TestLockerIsExclusive(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	first, err := locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "sweep", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, first.Release(ctx))
	second, err := locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.NoError(t, second.Release(ctx))
}

func TestLockReleaseKeepsForeignLease(t *testing.T) {
	locker, s := newLocker(t)
	ctx := context.Background()

	stale, err := locker.Acquire(ctx, "sweep", time.Second)
	require.NoError(t, err)
	s.FastForward(2 * time.Second)

	fresh, err := locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale.Release(ctx))
	assert.True(t, s.Exists("sweep"))
	require.NoError(t, fresh.Release(ctx))
	assert.False(t, s.Exists("sweep"))
}

func TestNewRedisPings(t *testing.T) {
	s := miniredis.RunT(t)
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)

	client, err := NewRedis(config.RedisConfig{Host: s.Host(), Port: port})
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
