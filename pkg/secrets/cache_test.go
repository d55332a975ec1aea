package secrets

import (
	"sync"
	"testing"
	"time"
)

func TestCacheReturnsFreshEntries(t *testing.T) {
	cache := NewCache(0)
	clock := time.Unix(0, 0)
	cache.now = func() time.Time { return clock }

	if _, ok := cache.Get("db"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	cache.Put("db", "conn-1")

	clock = clock.Add(59 * time.Minute)
	got, ok := cache.Get("db")
	if !ok || got != "conn-1" {
		t.Fatalf("expected fresh hit, got %q %v", got, ok)
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	cache := NewCache(time.Hour)
	clock := time.Unix(0, 0)
	cache.now = func() time.Time { return clock }
	cache.Put("db", "conn-1")

	clock = clock.Add(time.Hour)
	if _, ok := cache.Get("db"); ok {
		t.Fatalf("expected entry to be stale at exactly TTL")
	}
	if cache.Len() != 1 {
		t.Fatalf("stale entry should be evicted lazily, len=%d", cache.Len())
	}

	cache.Put("db", "conn-2")
	got, ok := cache.Get("db")
	if !ok || got != "conn-2" {
		t.Fatalf("expected refreshed entry, got %q %v", got, ok)
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(0)
	cache.Put("a", "1")
	cache.Put("b", "2")
	cache.Clear()
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after clear")
	}
	if _, ok := cache.Get("a"); ok {
		t.Fatalf("expected miss after clear")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache(0)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Put("shared", "value")
			_, _ = cache.Get("shared")
		}()
	}
	wg.Wait()
	if got, ok := cache.Get("shared"); !ok || got != "value" {
		t.Fatalf("expected shared value, got %q %v", got, ok)
	}
}
