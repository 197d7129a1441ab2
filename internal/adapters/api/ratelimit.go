package api

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// rateLimiter implements a simple per-client token bucket.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int     // max tokens
}

type bucket struct {
	tokens float64
	last   time.Time
}

const bucketIdleTimeout = 10 * time.Minute

func newRateLimiter(rate float64, burst int) *rateLimiter {
	rl := &rateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{
			tokens: float64(rl.burst),
			last:   time.Now(),
		}
		rl.buckets[key] = b
	}

	now := time.Now()
	elapsed := now.Sub(b.last).Seconds()
	b.last = now

	b.tokens += elapsed * rl.rate
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// cleanupLoop periodically drops buckets for clients that have gone quiet.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.Cleanup()
	}
}

// Cleanup removes buckets idle longer than bucketIdleTimeout so the map does
// not grow with every distinct client address ever seen.
func (rl *rateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, b := range rl.buckets {
		if now.Sub(b.last) > bucketIdleTimeout {
			delete(rl.buckets, key)
		}
	}
}

// RateLimit rejects clients exceeding rate requests per second (with the
// given burst allowance), keyed by remote IP.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	rl := newRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !rl.Allow(ip) {
				w.Header().Set("Retry-After", "1")
				WriteProblem(w, r, http.StatusTooManyRequests, "Too Many Requests",
					"request rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
