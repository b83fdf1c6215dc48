package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/smartsplit/expense-splitter/internal/api/httpx"
	"github.com/smartsplit/expense-splitter/internal/metrics"
)

const maxTrackedClients = 10000

type bucket struct {
	tokens int
	last   time.Time
}

// rateLimiter keeps one token bucket per client so a single busy client
// cannot exhaust the budget for everyone else.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int
	burst   int
}

func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	rl := &rateLimiter{buckets: map[string]*bucket{}, rate: rps, burst: rps}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientKey(r), time.Now()) {
				metrics.RateLimitedTotal.Inc()
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *rateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		if len(rl.buckets) >= maxTrackedClients {
			rl.prune(now)
		}
		b = &bucket{tokens: rl.burst, last: now}
		rl.buckets[key] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		if refill := int(elapsed * float64(rl.rate)); refill > 0 {
			b.tokens += refill
			if b.tokens > rl.burst {
				b.tokens = rl.burst
			}
			b.last = now
		}
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// prune drops buckets idle long enough to have refilled completely.
func (rl *rateLimiter) prune(now time.Time) {
	for k, b := range rl.buckets {
		if now.Sub(b.last) > time.Minute {
			delete(rl.buckets, k)
		}
	}
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
