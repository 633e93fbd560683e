package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCacheTTL(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewCache(10, time.Second)
	cache.now = func() time.Time { return now }

	cache.Set("btcusdt", decimal.NewFromInt(50000))

	if _, ok := cache.Get("btcusdt"); !ok {
		t.Fatal("fresh entry missing")
	}

	now = now.Add(2 * time.Second)
	if _, ok := cache.Get("btcusdt"); ok {
		t.Error("expired entry still served")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry not dropped, len = %d", cache.Len())
	}
}

func TestCacheBound(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewCache(2, time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("a", decimal.NewFromInt(1))
	now = now.Add(time.Second)
	cache.Set("b", decimal.NewFromInt(2))
	now = now.Add(time.Second)
	cache.Set("c", decimal.NewFromInt(3))

	if cache.Len() > 2 {
		t.Errorf("cache exceeded bound: len = %d", cache.Len())
	}

	// The oldest entry made room.
	if _, ok := cache.Get("a"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("newest entry missing")
	}
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	cache := NewCache(2, time.Minute)

	cache.Set("a", decimal.NewFromInt(1))
	cache.Set("b", decimal.NewFromInt(2))
	cache.Set("a", decimal.NewFromInt(3))

	price, ok := cache.Get("a")
	if !ok || !price.Equal(decimal.NewFromInt(3)) {
		t.Errorf("overwrite lost: %s, %v", price, ok)
	}
	if _, ok := cache.Get("b"); !ok {
		t.Error("unrelated entry evicted on overwrite")
	}
}
