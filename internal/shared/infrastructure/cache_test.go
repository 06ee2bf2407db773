package infrastructure

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheExpiry(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Close()

	cache.Set("user_order_stats:1", 3, time.Hour)
	cache.Set("user_order_stats:2", 7, -time.Second)

	v, ok := cache.Get("user_order_stats:1")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = cache.Get("user_order_stats:2")
	assert.False(t, ok, "expired entry must not be served")
	assert.Equal(t, 2, cache.Len())

	cache.Delete("user_order_stats:1")
	assert.False(t, cache.Has("user_order_stats:1"))

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestInMemoryCacheCloseIsIdempotent(t *testing.T) {
	cache := NewInMemoryCache()
	cache.Close()
	cache.Close()
}

func TestShardedCacheRoutesKeysConsistently(t *testing.T) {
	cache := NewShardedCache(8)
	defer cache.Close()

	for i := int64(0); i < 100; i++ {
		key := NewCacheKeyBuilder().Add("restaurant_order_count").AddInt64(i).Build()
		cache.Set(key, i, time.Minute)
	}
	for i := int64(0); i < 100; i++ {
		key := NewCacheKeyBuilder().Add("restaurant_order_count").AddInt64(i).Build()
		v, ok := cache.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, i, v)
	}

	cache.Clear()
	assert.False(t, cache.Has("restaurant_order_count:1"))
}

func TestNewShardedCachePanicsOnInvalidShardCount(t *testing.T) {
	assert.Panics(t, func() { NewShardedCache(3) })
	assert.Panics(t, func() { NewShardedCache(0) })
}

func TestCacheKeyBuilder(t *testing.T) {
	key := NewCacheKeyBuilder().Add("user_order_stats").AddInt64(42).Build()
	assert.Equal(t, "user_order_stats:42", key)
}

// BenchmarkInMemoryCache_Get_HighContention teste Get avec haute contention
func BenchmarkInMemoryCache_Get_HighContention(b *testing.B) {
	cache := NewInMemoryCache()
	defer cache.Close()
	cache.Set("shared_key", "shared_value", 5*time.Minute)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = cache.Get("shared_key")
		}
	})
}

// BenchmarkShardedCache_Mixed_80Read_20Write teste un mix 80% read / 20% write
func BenchmarkShardedCache_Mixed_80Read_20Write(b *testing.B) {
	cache := NewShardedCache(16)
	defer cache.Close()

	for i := 0; i < 1000; i++ {
		cache.Set(fmt.Sprintf("key%d", i), "value", 5*time.Minute)
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		n := 0
		for pb.Next() {
			n++
			key := fmt.Sprintf("key%d", n%1000)
			if n%5 == 0 {
				cache.Set(key, "value", 5*time.Minute)
			} else {
				_, _ = cache.Get(key)
			}
		}
	})
}
