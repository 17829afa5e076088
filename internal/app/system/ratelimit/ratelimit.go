// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/inkwell/internal/app/system/normalize"
	"golang.org/x/time/rate"
)

// Limiter is a keyed token bucket: each key may make limit requests per
// duration, refilled evenly across the duration. It is safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     int
	duration  time.Duration
	lastSweep time.Time

	// Now supplies the current time. Tests may replace it.
	Now func() time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing limit requests per duration for each key.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		buckets:  make(map[string]*bucket),
		limit:    limit,
		duration: duration,
		Now:      time.Now,
	}
}

// Allow reports whether a request for key may proceed, consuming one token
// if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()
	l.sweep(now)
	return l.bucketFor(key, now).lim.AllowN(now, 1)
}

// Remaining returns how many requests key could make right now.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		return l.limit
	}
	n := int(b.lim.TokensAt(l.Now()))
	if n < 0 {
		return 0
	}
	return n
}

// Reset clears the history for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

func (l *Limiter) bucketFor(key string, now time.Time) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(l.duration / time.Duration(l.limit))
		b = &bucket{lim: rate.NewLimiter(every, l.limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

// sweep drops buckets idle for a full window; by then they have refilled and
// are indistinguishable from new ones. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.duration {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.duration {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles sign-in attempts both per client IP and per
// username, so neither spraying one account from many addresses nor many
// accounts from one address gets far.
type LoginLimiter struct {
	ip   *Limiter
	user *Limiter
}

// NewLoginLimiter creates a limiter with the default login limits:
// 10 attempts per IP per minute, 5 attempts per username per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig creates a login limiter with custom limits.
func NewLoginLimiterWithConfig(ipLimit int, ipDuration time.Duration, userLimit int, userDuration time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ip:   New(ipLimit, ipDuration),
		user: New(userLimit, userDuration),
	}
}

// SetClock replaces the time source of both limiters.
func (ll *LoginLimiter) SetClock(now func() time.Time) {
	ll.ip.Now = now
	ll.user.Now = now
}

// Check reports whether a login attempt may proceed. When it may not, reason
// is the message to show the user.
func (ll *LoginLimiter) Check(r *http.Request, username string) (allowed bool, reason string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}

	if key := normalize.Username(username); key != "" {
		if !ll.user.Allow(strings.ToLower(key)) {
			return false, "Too many login attempts for this account. Please wait a few minutes."
		}
	}

	return true, ""
}

// ResetUser clears the per-username history after a successful login.
func (ll *LoginLimiter) ResetUser(username string) {
	if key := normalize.Username(username); key != "" {
		ll.user.Reset(strings.ToLower(key))
	}
}
