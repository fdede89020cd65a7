package middleware

import (
	"sync"
	"time"
)

// InvalidTokenRateLimiter counts rejected session tokens per client IP.
// Valid requests are never counted.
type InvalidTokenRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidTokenRateLimiter allows limit rejected attempts per window.
func NewInvalidTokenRateLimiter(limit int, window time.Duration) *InvalidTokenRateLimiter {
	return &InvalidTokenRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records one rejected attempt from ip and reports whether it is
// still within the limit.
func (r *InvalidTokenRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, exists := r.attempts[ip]
	if !exists || now.Sub(info.firstAt) > r.window {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return true
	}

	if info.count >= r.limit {
		return false
	}
	info.count++
	return true
}

// Prune drops windows that have ended and returns how many were removed.
func (r *InvalidTokenRateLimiter) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for ip, info := range r.attempts {
		if now.Sub(info.firstAt) > r.window {
			delete(r.attempts, ip)
			removed++
		}
	}
	return removed
}
