package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requires Redis running on localhost:6379
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T, prefix string) *Cache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	c := New(client, prefix, time.Minute)
	t.Cleanup(func() {
		_ = c.DeletePattern(ctx, "*")
		client.Close()
	})
	return c
}

func TestNilCacheIsPassthrough(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	hit, err := c.Get(ctx, "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Set(ctx, "k", "v"))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeletePattern(ctx, "*"))

	calls := 0
	for i := 0; i < 2; i++ {
		ids, err := Remember(ctx, c, KeyOnSaleIDs, func() ([]uint, error) {
			calls++
			return []uint{1, 2}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []uint{1, 2}, ids)
	}
	assert.Equal(t, 2, calls)
}

func TestConnectWithoutURLDisablesCache(t *testing.T) {
	c, err := Connect(context.Background(), "", "catalog:", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestRememberPropagatesLoadError(t *testing.T) {
	_, err := Remember(context.Background(), nil, "k", func() (int, error) {
		return 0, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
}

func TestRememberCachesValue(t *testing.T) {
	c := setupTestCache(t, "catalog-test:remember:")
	ctx := context.Background()

	calls := 0
	load := func() ([]uint, error) {
		calls++
		return []uint{4, 9}, nil
	}

	first, err := Remember(ctx, c, KeyOnSaleIDs, load)
	require.NoError(t, err)
	second, err := Remember(ctx, c, KeyOnSaleIDs, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Delete(ctx, KeyOnSaleIDs))
	_, err = Remember(ctx, c, KeyOnSaleIDs, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDeletePattern(t *testing.T) {
	c := setupTestCache(t, "catalog-test:pattern:")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, KeyTerms("product_cat"), []string{"a"}))
	require.NoError(t, c.Set(ctx, KeyTerms("product_tag"), []string{"b"}))
	require.NoError(t, c.Set(ctx, KeyOnSaleIDs, []uint{1}))

	require.NoError(t, c.DeletePattern(ctx, KeyTermPrefix+"*"))

	var out []string
	hit, err := c.Get(ctx, KeyTerms("product_cat"), &out)
	require.NoError(t, err)
	assert.False(t, hit)

	var ids []uint
	hit, err = c.Get(ctx, KeyOnSaleIDs, &ids)
	require.NoError(t, err)
	assert.True(t, hit)
}
