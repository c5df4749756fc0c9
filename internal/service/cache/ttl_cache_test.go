package cache

import (
	"testing"
	"time"
)

func TestTTLCacheSetGet(t *testing.T) {
	c := NewTTLCache[string](time.Minute)
	defer c.Close()

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("expected hit, got %q %v", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[int](time.Minute)
	defer c.Close()

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", 42)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not reclaimed on access")
	}
}

func TestTTLCacheOverwrite(t *testing.T) {
	c := NewTTLCache[int](time.Minute)
	defer c.Close()

	c.Set("k", 1)
	c.Set("k", 2)
	got, ok := c.Get("k")
	if !ok || got != 2 {
		t.Fatalf("expected overwritten value, got %d %v", got, ok)
	}
}

func TestTTLCacheCloseIdempotent(t *testing.T) {
	c := NewTTLCache[int](time.Minute)
	c.Close()
	c.Close()
}
