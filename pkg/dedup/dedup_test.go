package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCacheWithClient(client, RedisConfig{Prefix: "ledger:", TTL: time.Hour}), mr
}

func TestKey(t *testing.T) {
	assert.Equal(t, "ch_1:completed", Key("ch_1", "completed"))
}

func TestLocalCache(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Minute)

	seen, err := c.Seen(ctx, "k")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.Mark(ctx, "k"))
	seen, _ = c.Seen(ctx, "k")
	assert.True(t, seen)
	assert.Equal(t, 1, c.Len())
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	seen, err := c.Seen(ctx, "ch_1:completed")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.Mark(ctx, "ch_1:completed"))
	assert.True(t, mr.Exists("ledger:ch_1:completed"))
	assert.Equal(t, time.Hour, mr.TTL("ledger:ch_1:completed"))

	seen, err = c.Seen(ctx, "ch_1:completed")
	require.NoError(t, err)
	assert.True(t, seen)

	mr.FastForward(2 * time.Hour)
	seen, err = c.Seen(ctx, "ch_1:completed")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)
	mr.Close()

	_, err := c.Seen(ctx, "k")
	assert.Error(t, err)
}

type failingCache struct{}

func (failingCache) Seen(context.Context, string) (bool, error) { return false, errors.New("down") }
func (failingCache) Mark(context.Context, string) error         { return errors.New("down") }

func TestTiered(t *testing.T) {
	ctx := context.Background()
	local := NewLocalCache(time.Minute)
	shared, mr := newTestRedisCache(t)
	tiered := NewTiered(local, shared)

	require.NoError(t, tiered.Mark(ctx, "a"))
	assert.True(t, mr.Exists("ledger:a"))
	assert.Equal(t, 1, local.Len())

	// a key marked by another replica is found through the shared tier
	require.NoError(t, shared.Mark(ctx, "b"))
	seen, err := tiered.Seen(ctx, "b")
	require.NoError(t, err)
	assert.True(t, seen)

	broken := NewTiered(local, failingCache{})
	seen, err = broken.Seen(ctx, "a")
	require.NoError(t, err)
	assert.True(t, seen)

	_, err = broken.Seen(ctx, "missing")
	assert.Error(t, err)
	assert.Error(t, broken.Mark(ctx, "c"))
	seen, _ = local.Seen(ctx, "c")
	assert.True(t, seen)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Mark(context.Background(), "x"))
	seen, err := c.Seen(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, seen)
}
