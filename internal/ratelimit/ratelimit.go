// Package ratelimit gates admission attempts per remote host and, optionally,
// chat messages per client name using token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements a token bucket rate limiter.
type TokenBucket struct {
	mu         sync.Mutex
	tokens     int
	capacity   int
	rate       int // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a new token bucket with the given rate and capacity.
func NewTokenBucket(rate, capacity int) *TokenBucket {
	return &TokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		rate:       rate,
		lastRefill: time.Now(),
	}
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds() * float64(tb.rate))
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Limiter combines a global admission bucket with per-host admission buckets
// and per-name message buckets. A rate of 0 disables that dimension.
type Limiter struct {
	mu        sync.Mutex
	global    *TokenBucket
	perHost   map[string]*TokenBucket
	perName   map[string]*TokenBucket
	connRate  int
	msgRate   int
	burstSize int
}

// New creates a Limiter. globalConnLimit and perHostConnLimit gate admission
// attempts; perNameMsgLimit gates relayed chat messages per client name.
func New(globalConnLimit, perHostConnLimit, perNameMsgLimit, burstSize int) *Limiter {
	l := &Limiter{
		perHost:   make(map[string]*TokenBucket),
		perName:   make(map[string]*TokenBucket),
		connRate:  perHostConnLimit,
		msgRate:   perNameMsgLimit,
		burstSize: burstSize,
	}
	if globalConnLimit > 0 {
		l.global = NewTokenBucket(globalConnLimit, burstSize)
	}
	return l
}

// AllowConnection checks whether an admission attempt from the given host may
// proceed.
func (l *Limiter) AllowConnection(host string) bool {
	if l.global != nil && !l.global.Allow() {
		return false
	}
	if l.connRate > 0 {
		return l.bucketFor(l.perHost, host, l.connRate).Allow()
	}
	return true
}

// AllowMessage checks whether a chat message from the given client name may
// be relayed.
func (l *Limiter) AllowMessage(name string) bool {
	if l.msgRate > 0 {
		return l.bucketFor(l.perName, name, l.msgRate).Allow()
	}
	return true
}

func (l *Limiter) bucketFor(m map[string]*TokenBucket, key string, rate int) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	bucket, ok := m[key]
	if !ok {
		bucket = NewTokenBucket(rate, l.burstSize)
		m[key] = bucket
	}
	return bucket
}

// Prune removes buckets for keys no longer active, so long-running servers do
// not accumulate limiter state for every host that ever connected.
func (l *Limiter) Prune(activeHosts, activeNames map[string]bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for host := range l.perHost {
		if !activeHosts[host] {
			delete(l.perHost, host)
		}
	}
	for name := range l.perName {
		if !activeNames[name] {
			delete(l.perName, name)
		}
	}
}
