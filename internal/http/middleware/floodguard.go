package middleware

import (
	"net/http"
	"sync"
	"time"
)

// FloodGuard provides per-IP request throttling using a token bucket. It
// sits in front of the whole router as a blunt transport-level guard; the
// per-identity submission limit in the intake pipeline is separate and
// much stricter.
type FloodGuard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int     // max tokens
}

type bucket struct {
	tokens   float64
	lastTime time.Time
}

// NewFloodGuard creates a guard allowing rate requests/sec with the given
// burst size per IP.
func NewFloodGuard(rate float64, burst int) *FloodGuard {
	fg := &FloodGuard{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
	}
	// Periodically evict stale entries to prevent memory growth.
	go fg.cleanup()
	return fg
}

// Allow returns true if the request from ip is within the rate limit.
func (fg *FloodGuard) Allow(ip string) bool {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	now := time.Now()
	b, ok := fg.buckets[ip]
	if !ok {
		b = &bucket{tokens: float64(fg.burst), lastTime: now}
		fg.buckets[ip] = b
	}

	elapsed := now.Sub(b.lastTime).Seconds()
	b.tokens += elapsed * fg.rate
	if b.tokens > float64(fg.burst) {
		b.tokens = float64(fg.burst)
	}
	b.lastTime = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (fg *FloodGuard) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		fg.mu.Lock()
		cutoff := time.Now().Add(-10 * time.Minute)
		for ip, b := range fg.buckets {
			if b.lastTime.Before(cutoff) {
				delete(fg.buckets, ip)
			}
		}
		fg.mu.Unlock()
	}
}

// Throttle returns an HTTP middleware that rejects requests exceeding the
// configured rate with 429 Too Many Requests.
func Throttle(rate float64, burst int) func(http.Handler) http.Handler {
	guard := NewFloodGuard(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// Prefer X-Real-Ip set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !guard.Allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
