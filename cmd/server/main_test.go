package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feedgraph/config"
	"github.com/d60-Lab/feedgraph/pkg/cache"
)

func redisConfig(addr string, allowFallback bool) *config.Config {
	cfg := &config.Config{}
	cfg.Redis = config.RedisConfig{
		Enabled:       true,
		Addr:          addr,
		DialTimeout:   200 * time.Millisecond,
		ReadTimeout:   200 * time.Millisecond,
		AllowFallback: allowFallback,
	}
	return cfg
}

func deadAddr(t *testing.T) string {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	return addr
}

func TestNewCache_UsesReachableRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, closeCache, err := newCache(context.Background(), redisConfig(mr.Addr(), false))
	require.NoError(t, err)
	defer closeCache()
	assert.IsType(t, &cache.RedisCache{}, c)
}

func TestNewCache_UnreachableRedisFailsStartup(t *testing.T) {
	c, _, err := newCache(context.Background(), redisConfig(deadAddr(t), false))
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestNewCache_FallbackOnlyWhenAllowed(t *testing.T) {
	c, closeCache, err := newCache(context.Background(), redisConfig(deadAddr(t), true))
	require.NoError(t, err)
	defer closeCache()
	assert.IsType(t, &cache.MemoryCache{}, c)
}

func TestNewCache_RedisDisabled(t *testing.T) {
	cfg := redisConfig("", false)
	cfg.Redis.Enabled = false

	c, closeCache, err := newCache(context.Background(), cfg)
	require.NoError(t, err)
	defer closeCache()
	assert.IsType(t, &cache.MemoryCache{}, c)
}
