package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisJSON_RoundTripAndExpiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	type item struct {
		Name string `json:"name"`
	}
	require.NoError(t, RedisSetJSON(ctx, rdb, "k", item{Name: "dune"}, time.Minute))

	var got item
	found, err := RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dune", got.Name)

	mr.FastForward(2 * time.Minute)
	found, err = RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisGetJSON_CorruptValue(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var got map[string]any
	found, err := RedisGetJSON(context.Background(), rdb, "k", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisDel(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, mr.Set("b", "2"))

	require.NoError(t, RedisDel(context.Background(), rdb, "a", "b"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
}
