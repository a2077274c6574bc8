package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/crimewatch/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	expected := testStruct{Name: "Alice", Age: 30}
	err := cache.Set(ctx, "user:1", expected, time.Minute)
	require.NoError(t, err)

	var actual testStruct
	found, err := cache.Get(ctx, "user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out testStruct
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "key"))

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	err := cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out testStruct
	found, err := cache.Get(ctx, "bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestAcquire(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	ok, err := cache.Acquire(ctx, "trial-action:u1:a1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// повторное действие с тем же идентификатором отклоняется
	ok, err = cache.Acquire(ctx, "trial-action:u1:a1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// другое действие проходит
	ok, err = cache.Acquire(ctx, "trial-action:u1:a2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// после истечения ttl ключ снова свободен
	mr.FastForward(2 * time.Minute)
	ok, err = cache.Acquire(ctx, "trial-action:u1:a1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// после Invalidate ключ тоже свободен
	require.NoError(t, cache.Invalidate(ctx, "trial-action:u1:a2"))
	ok, err = cache.Acquire(ctx, "trial-action:u1:a2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAcquire_ServerDown(t *testing.T) {
	cache, mr := setupTestCache(t)
	mr.Close()

	ok, err := cache.Acquire(context.Background(), "k", time.Minute)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}
