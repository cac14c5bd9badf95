package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapnilsubhashpatil/Secrets/internal/testutil"
	"github.com/swapnilsubhashpatil/Secrets/pkg/cache"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips a struct through JSON", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		c := testutil.NewTestCache(t, mr)

		stored := cachedValue{Name: "session", Count: 3}
		require.NoError(t, c.Set(ctx, "test:key", stored, time.Minute))

		var got cachedValue
		require.NoError(t, c.Get(ctx, "test:key", &got))
		assert.Equal(t, stored, got)
	})

	t.Run("missing key yields ErrCacheMiss", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		c := testutil.NewTestCache(t, mr)

		var got cachedValue
		err := c.Get(ctx, "test:absent", &got)
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("entries expire after their TTL", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		c := testutil.NewTestCache(t, mr)

		require.NoError(t, c.Set(ctx, "test:ttl", cachedValue{Name: "short"}, 5*time.Minute))

		mr.FastForward(6 * time.Minute)

		var got cachedValue
		err := c.Get(ctx, "test:ttl", &got)
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the given keys", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		c := testutil.NewTestCache(t, mr)

		require.NoError(t, c.Set(ctx, "test:a", cachedValue{}, time.Minute))
		require.NoError(t, c.Set(ctx, "test:b", cachedValue{}, time.Minute))

		require.NoError(t, c.Delete(ctx, "test:a", "test:b"))

		var got cachedValue
		assert.ErrorIs(t, c.Get(ctx, "test:a", &got), cache.ErrCacheMiss)
		assert.ErrorIs(t, c.Get(ctx, "test:b", &got), cache.ErrCacheMiss)
	})

	t.Run("no keys is a no-op", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		c := testutil.NewTestCache(t, mr)

		assert.NoError(t, c.Delete(ctx))
	})
}

func TestGetOrSet(t *testing.T) {
	ctx := context.Background()

	t.Run("miss invokes the loader and populates the cache", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		c := testutil.NewTestCache(t, mr)

		calls := 0
		loader := func() (interface{}, error) {
			calls++
			return cachedValue{Name: "loaded", Count: 1}, nil
		}

		var got cachedValue
		require.NoError(t, c.GetOrSet(ctx, "test:lazy", time.Minute, &got, loader))
		assert.Equal(t, "loaded", got.Name)
		assert.Equal(t, 1, calls)

		// Second call should be served from cache.
		var again cachedValue
		require.NoError(t, c.GetOrSet(ctx, "test:lazy", time.Minute, &again, loader))
		assert.Equal(t, "loaded", again.Name)
		assert.Equal(t, 1, calls)
	})

	t.Run("loader errors propagate without caching", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		c := testutil.NewTestCache(t, mr)

		wantErr := errors.New("database down")
		err := c.GetOrSet(ctx, "test:fail", time.Minute, &cachedValue{}, func() (interface{}, error) {
			return nil, wantErr
		})
		assert.ErrorIs(t, err, wantErr)

		var got cachedValue
		assert.ErrorIs(t, c.Get(ctx, "test:fail", &got), cache.ErrCacheMiss)
	})
}

func TestSessionKeys(t *testing.T) {
	assert.Equal(t, "session:abc123", cache.SessionKey("abc123"))
}
