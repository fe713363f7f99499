// Package ratelimit keeps one token bucket per key (usually a client IP).
package ratelimit

import (
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultPerMinute = 30
	defaultBurst     = 10
	defaultIdle      = 10 * time.Minute
	sweepEvery       = 256
)

type entry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// Limiter is a keyed rate limiter. The zero value is not usable; use New.
type Limiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	calls   int
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithIdle sets how long an untouched key is remembered.
func WithIdle(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idle = d
		}
	}
}

// New builds a Limiter refilling perMinute tokens per minute up to burst.
// Non-positive values fall back to 30 per minute and a burst of 10.
func New(perMinute, burst int, opts ...Option) *Limiter {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	l := &Limiter{
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idle:    defaultIdle,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes one token for key and reports whether it was available.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.seen = now
	return e.limiter.AllowN(now, 1)
}

// Prune forgets keys idle for longer than the idle window.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(l.now())
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Limiter) sweep(now time.Time) {
	for key, e := range l.entries {
		if now.Sub(e.seen) > l.idle {
			delete(l.entries, key)
		}
	}
}

// HostKey reduces an address to the host part used as a limiter key.
func HostKey(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	return HostFromString(addr.String())
}

// HostFromString is HostKey for "host:port" strings.
func HostFromString(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" {
		return "unknown"
	}
	return host
}
