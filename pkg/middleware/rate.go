// Package middleware provides the HTTP middleware of the storefront API.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// bucket tracks a fixed-window request count for one IP. Buckets are
// only touched under Limiter.mu.
type bucket struct {
	count   int
	resetAt time.Time
}

func (b *bucket) allow(now time.Time, max int, window time.Duration) bool {
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

func (b *bucket) expired(now time.Time) bool {
	return now.After(b.resetAt)
}

// Limiter holds the per-IP buckets for RateLimit.
type Limiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewLimiter allows max requests per window for each client IP.
func NewLimiter(max int, window time.Duration) *Limiter {
	if max <= 0 {
		max = 1
	}
	return &Limiter{
		max:     max,
		window:  window,
		now:     time.Now,
		buckets: map[string]*bucket{},
	}
}

// Allow counts one request for ip and reports whether it is within budget.
func (l *Limiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[ip] = b
	}
	return b.allow(now, l.max, l.window)
}

// Sweep evicts buckets whose window has passed.
func (l *Limiter) Sweep() {
	now := l.now()
	l.mu.Lock()
	for ip, b := range l.buckets {
		if b.expired(now) {
			delete(l.buckets, ip)
		}
	}
	l.mu.Unlock()
}

// StartJanitor sweeps every window until ctx is done.
func (l *Limiter) StartJanitor(c context.Context) {
	go func() {
		ticker := time.NewTicker(l.window)
		defer ticker.Stop()
		for {
			select {
			case <-c.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

// Middleware rejects requests over budget with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ctx.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit is shorthand for NewLimiter(max, window).Middleware without a
// janitor, for short-lived servers and tests.
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return NewLimiter(max, window).Middleware
}
