package currency

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_GetPut(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute)

	if _, ok := c.Get(ctx, "USD"); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Put(ctx, "USD", Rates{"EUR": 0.9}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	rates, ok := c.Get(ctx, "USD")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if rates["EUR"] != 0.9 {
		t.Errorf("EUR = %v, want 0.9", rates["EUR"])
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", stats)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Put(ctx, "USD", Rates{"EUR": 0.9})

	now = now.Add(59 * time.Second)
	if _, ok := c.Get(ctx, "USD"); !ok {
		t.Error("entry expired too early")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get(ctx, "USD"); ok {
		t.Error("entry should have expired")
	}
	if c.Stats().Items != 0 {
		t.Error("expired entry was not removed")
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Hour)

	_ = c.Put(ctx, "USD", Rates{"EUR": 0.9})
	_ = c.Put(ctx, "EUR", Rates{"USD": 1.1})

	// touch USD so EUR becomes the oldest
	c.Get(ctx, "USD")

	_ = c.Put(ctx, "GBP", Rates{"USD": 1.27})

	if _, ok := c.Get(ctx, "EUR"); ok {
		t.Error("EUR should have been evicted")
	}
	if _, ok := c.Get(ctx, "USD"); !ok {
		t.Error("USD should still be cached")
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
}
