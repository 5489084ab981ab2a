package redis_test

import (
	"context"
	"testing"
	"time"

	"gaugyan-payout-service/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewBalanceCache(client)
	ctx := context.Background()
	vendorID := uuid.New()

	t.Run("miss before set", func(t *testing.T) {
		_, found, err := cache.Get(ctx, vendorID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("hit after set", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, vendorID, 75000, 30*time.Second))

		balance, found, err := cache.Get(ctx, vendorID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(75000), balance)
	})

	t.Run("invalidate removes entry", func(t *testing.T) {
		require.NoError(t, cache.Invalidate(ctx, vendorID))

		_, found, err := cache.Get(ctx, vendorID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("entry expires after TTL", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, vendorID, 1200, 10*time.Second))

		mr.FastForward(11 * time.Second)

		_, found, err := cache.Get(ctx, vendorID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("corrupt entry treated as miss", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "balance:"+vendorID.String(), "not-a-number", 0).Err())

		_, found, err := cache.Get(ctx, vendorID)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
