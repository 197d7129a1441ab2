package testutil

import (
	"context"
	"testing"
	"time"
)

func TestMockCacheCounters(t *testing.T) {
	c := NewMockCache()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set(ctx, "k", []byte("v"), time.Minute)
	val, ok := c.Get(ctx, "k")
	if !ok || string(val) != "v" {
		t.Fatalf("expected hit with v, got %q ok=%v", val, ok)
	}
	if c.Hits != 1 || c.Misses != 1 || c.Sets != 1 {
		t.Errorf("counters hits=%d misses=%d sets=%d", c.Hits, c.Misses, c.Sets)
	}
}
