package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	t.Run("allows up to the limit within the window", func(t *testing.T) {
		l := NewLimiter(time.Minute, 3)

		for i := 0; i < 3; i++ {
			if !l.Allow("ip1") {
				t.Fatalf("Expected hit %d to be allowed", i+1)
			}
		}
		if l.Allow("ip1") {
			t.Error("Expected the fourth hit to be rejected")
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := NewLimiter(time.Minute, 1)

		if !l.Allow("ip1") {
			t.Fatal("Expected first key to be allowed")
		}
		if !l.Allow("ip2") {
			t.Error("Expected second key to be allowed")
		}
	})

	t.Run("hits expire with the window", func(t *testing.T) {
		l := NewLimiter(20*time.Millisecond, 1)

		if !l.Allow("ip1") {
			t.Fatal("Expected first hit to be allowed")
		}
		if l.Allow("ip1") {
			t.Fatal("Expected second hit to be rejected")
		}

		time.Sleep(30 * time.Millisecond)

		if !l.Allow("ip1") {
			t.Error("Expected hit to be allowed after the window passed")
		}
	})
}
