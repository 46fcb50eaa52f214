package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/billing-admin/internal/config"
)

type testStruct struct {
	Name   string
	Amount string
}

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := testStruct{Name: "Maria", Amount: "32.85"}
	err := cache.Set(ClientKey("c-1"), expected, time.Minute)
	require.NoError(t, err)

	var actual testStruct
	found, err := cache.Get(ClientKey("c-1"), &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out testStruct
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Set("key", "value", time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate("key")
	require.NoError(t, err)

	var out string
	found, err := cache.Get("key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Db.Set(context.Background(), "bad", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out testStruct
	found, err := cache.Get("bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:9999",
		DialTimeout:  100 * time.Millisecond,
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}

func TestInvalidatePrefix(t *testing.T) {
	cache := setupTestCache(t)

	for month := 1; month <= 3; month++ {
		require.NoError(t, cache.Set(ReportKey(2024, month), "report", time.Minute))
	}
	require.NoError(t, cache.Set(ClientKey("c-1"), "client", time.Minute))

	err := cache.InvalidatePrefix(ReportPrefix)
	require.NoError(t, err)

	var out string
	for month := 1; month <= 3; month++ {
		found, err := cache.Get(ReportKey(2024, month), &out)
		require.NoError(t, err)
		assert.False(t, found)
	}

	found, err := cache.Get(ClientKey("c-1"), &out)
	require.NoError(t, err)
	assert.True(t, found, "keys outside the prefix stay")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "client:abc", ClientKey("abc"))
	assert.Equal(t, "report:2024-03", ReportKey(2024, 3))
}
