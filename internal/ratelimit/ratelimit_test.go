package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	bucket := NewTokenBucket(2, 5) // 2 tokens per second, capacity of 5

	for i := 0; i < 5; i++ {
		if !bucket.Allow() {
			t.Errorf("expected initial request %d to be allowed", i)
		}
	}
	if bucket.Allow() {
		t.Error("expected request to be denied when bucket is empty")
	}

	time.Sleep(1100 * time.Millisecond)

	if !bucket.Allow() {
		t.Error("expected request to be allowed after token refill")
	}
	if !bucket.Allow() {
		t.Error("expected second request to be allowed after token refill")
	}
	if bucket.Allow() {
		t.Error("expected third request to be denied")
	}
}

func TestLimiterPerHost(t *testing.T) {
	l := New(0, 2, 0, 3) // per-host: 2 conn/s, burst 3; global and message limits off

	host := "203.0.113.7"
	for i := 0; i < 3; i++ {
		if !l.AllowConnection(host) {
			t.Errorf("expected connection %d to be allowed for %s", i, host)
		}
	}
	if l.AllowConnection(host) {
		t.Error("expected connection to be denied once the host burst is spent")
	}

	// A different host has its own bucket.
	if !l.AllowConnection("203.0.113.8") {
		t.Error("expected connection to be allowed for a different host")
	}

	// Message limiting is disabled, so it never refuses.
	for i := 0; i < 10; i++ {
		if !l.AllowMessage("alice") {
			t.Error("expected message to be allowed with limiting disabled")
		}
	}
}

func TestLimiterPerName(t *testing.T) {
	l := New(0, 0, 2, 2) // per-name: 2 msg/s, burst 2

	for i := 0; i < 2; i++ {
		if !l.AllowMessage("alice") {
			t.Errorf("expected message %d to be allowed", i)
		}
	}
	if l.AllowMessage("alice") {
		t.Error("expected message to be denied once the burst is spent")
	}
	if !l.AllowMessage("bob") {
		t.Error("expected message to be allowed for a different name")
	}
}

func TestLimiterPrune(t *testing.T) {
	l := New(0, 1, 1, 1)
	l.AllowConnection("203.0.113.7")
	l.AllowConnection("203.0.113.8")
	l.AllowMessage("alice")

	l.Prune(map[string]bool{"203.0.113.8": true}, nil)

	l.mu.Lock()
	_, gone := l.perHost["203.0.113.7"]
	_, kept := l.perHost["203.0.113.8"]
	_, named := l.perName["alice"]
	l.mu.Unlock()
	if gone {
		t.Error("expected pruned host bucket to be removed")
	}
	if !kept {
		t.Error("expected active host bucket to survive")
	}
	if named {
		t.Error("expected inactive name bucket to be removed")
	}
}
