package security

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a fixed-window per-client limiter. It guards the auth and
// analysis endpoints; analysis calls are expensive and the UI's disabled
// button is not a server-side defense.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*window
	limit    int
	interval time.Duration
}

type window struct {
	count   int
	started time.Time
}

// NewRateLimiter allows limit requests per interval per client.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*window),
		limit:    limit,
		interval: interval,
	}
	go rl.sweep()
	return rl
}

// Allow records a request from the client and reports whether it is within
// the limit.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.visitors[client]
	if !ok || now.Sub(w.started) >= rl.interval {
		rl.visitors[client] = &window{count: 1, started: now}
		return true
	}
	w.count++
	return w.count <= rl.limit
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-2 * rl.interval)
		for client, w := range rl.visitors {
			if w.started.Before(cutoff) {
				delete(rl.visitors, client)
			}
		}
		rl.mu.Unlock()
	}
}

// ClientIP extracts the caller address, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
