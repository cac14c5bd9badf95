package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/swapnilsubhashpatil/Secrets/pkg/cache"
)

// SetupMiniRedis creates a miniredis instance for testing.
// The instance is closed automatically when the test finishes.
func SetupMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}

// NewTestRedisClient creates a Redis client connected to miniredis
func NewTestRedisClient(t *testing.T, mr *miniredis.Miniredis) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		DB:   0,
	})

	return client
}

// NewTestCache creates a cache backed by miniredis for testing
func NewTestCache(t *testing.T, mr *miniredis.Miniredis) *cache.Cache {
	t.Helper()
	return cache.NewCache(NewTestRedisClient(t, mr))
}
