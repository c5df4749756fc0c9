package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllowsUpToCapacity(t *testing.T) {
	l := NewLimiter(3, 1)
	base := time.Now()
	l.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		if !l.Allow("client") {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("client") {
		t.Fatalf("request over capacity should be rejected")
	}
}

func TestLimiterRefills(t *testing.T) {
	l := NewLimiter(2, 1)
	base := time.Now()
	l.now = func() time.Time { return base }

	l.Allow("client")
	l.Allow("client")
	if l.Allow("client") {
		t.Fatalf("bucket should be empty")
	}

	l.now = func() time.Time { return base.Add(1500 * time.Millisecond) }
	if !l.Allow("client") {
		t.Fatalf("expected a token after refill")
	}
	if l.Allow("client") {
		t.Fatalf("only one token should have refilled")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := NewLimiter(1, 0.001)
	base := time.Now()
	l.now = func() time.Time { return base }

	if !l.Allow("a") {
		t.Fatalf("first key should pass")
	}
	if !l.Allow("b") {
		t.Fatalf("second key should have its own bucket")
	}
	if l.Allow("a") {
		t.Fatalf("first key should be exhausted")
	}
}

func TestLimiterCapsAtCapacity(t *testing.T) {
	l := NewLimiter(2, 100)
	base := time.Now()
	l.now = func() time.Time { return base }

	l.Allow("client")
	// A long idle period must not accumulate beyond capacity.
	l.now = func() time.Time { return base.Add(time.Hour) }
	allowed := 0
	for i := 0; i < 5; i++ {
		if l.Allow("client") {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("expected refill capped at capacity 2, got %d", allowed)
	}
}
