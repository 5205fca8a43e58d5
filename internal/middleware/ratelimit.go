package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type windowEntry struct {
	requests []time.Time
	mu       sync.Mutex
}

// RateLimiter is a sliding-window limiter keyed by client IP.
type RateLimiter struct {
	max          int
	window       time.Duration
	store        sync.Map
	now          func() time.Time
	forwardedFor bool
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{max: max, window: window, now: time.Now}
}

// TrustForwardedFor keys clients by X-Forwarded-For. Enable it only behind a
// proxy that overwrites the header, otherwise clients pick their own key.
func (rl *RateLimiter) TrustForwardedFor(trust bool) {
	rl.forwardedFor = trust
}

func (rl *RateLimiter) allow(ip string) bool {
	now := rl.now()
	cutoff := now.Add(-rl.window)

	v, _ := rl.store.LoadOrStore(ip, &windowEntry{})
	entry := v.(*windowEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.requests = prune(entry.requests, cutoff)
	if len(entry.requests) >= rl.max {
		return false
	}

	entry.requests = append(entry.requests, now)
	return true
}

// Sweep drops clients with no requests left in the window.
func (rl *RateLimiter) Sweep() {
	cutoff := rl.now().Add(-rl.window)
	rl.store.Range(func(k, v any) bool {
		entry := v.(*windowEntry)
		entry.mu.Lock()
		entry.requests = prune(entry.requests, cutoff)
		empty := len(entry.requests) == 0
		entry.mu.Unlock()
		if empty {
			rl.store.Delete(k)
		}
		return true
	})
}

// Run sweeps every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if !rl.allow(clientIP(r, rl.forwardedFor)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func prune(requests []time.Time, cutoff time.Time) []time.Time {
	kept := requests[:0]
	for _, t := range requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// clientIP drops the port from RemoteAddr. With forwardedFor set the first
// X-Forwarded-For hop wins when present.
func clientIP(r *http.Request, forwardedFor bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); forwardedFor && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
