package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP with a token bucket each.
// The router mounts one instance globally and a stricter one on /auth, where
// credential stuffing would otherwise get free retries.
type RateLimiter struct {
	callers map[string]*caller
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
}

type caller struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig configures one limiter instance.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// CleanupInterval is how often idle callers are swept; TTL is how long
	// a caller may stay idle before its bucket is dropped.
	CleanupInterval time.Duration
	TTL             time.Duration
}

// NewRateLimiter creates a limiter and starts its idle-caller sweep.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		callers: make(map[string]*caller),
		rate:    rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.BurstSize,
	}

	go rl.sweepIdleCallers(cfg.CleanupInterval, cfg.TTL)

	return rl
}

// Allow reports whether a request from the given IP may proceed, creating
// the IP's bucket on first sight.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.callers[ip]
	if !ok {
		c = &caller{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.callers[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (rl *RateLimiter) sweepIdleCallers(interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, c := range rl.callers {
			if time.Since(c.lastSeen) > ttl {
				delete(rl.callers, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware rejects over-limit requests with a 429 before they reach the
// handlers.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(getClientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests. Please try again later.","code":"RATE_LIMITED"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP resolves the caller's IP, trusting the proxy headers the
// deployment sets before falling back to the socket address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip, _, err := net.SplitHostPort(xff); err == nil {
			return ip
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
