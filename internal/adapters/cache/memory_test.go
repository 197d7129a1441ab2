package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "templates:all", []byte("payload"), time.Minute)

	val, found := c.Get(ctx, "templates:all")
	if !found || string(val) != "payload" {
		t.Errorf("expected cached payload, got %q found=%v", val, found)
	}

	if _, found := c.Get(ctx, "missing"); found {
		t.Error("expected miss for unknown key")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), -time.Second)
	if _, found := c.Get(ctx, "k"); found {
		t.Error("expired entry must not be returned")
	}

	c.cleanup()
	s := c.getShard("k")
	s.mu.RLock()
	_, still := s.items["k"]
	s.mu.RUnlock()
	if still {
		t.Error("cleanup must reclaim expired entries")
	}
}

func TestMemoryCache_Flush(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)
	c.Flush()

	if _, found := c.Get(ctx, "a"); found {
		t.Error("flush must drop all entries")
	}
}
