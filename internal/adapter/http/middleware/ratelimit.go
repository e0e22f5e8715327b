package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/finvault/ledger/internal/infrastructure/metrics"
)

// RateLimitMiddleware applies a per-client token bucket. Clients are keyed
// by remote address; chi's RealIP middleware must run earlier for the key
// to be meaningful behind a proxy.
type RateLimitMiddleware struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	metrics  *metrics.Metrics
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimitMiddleware creates a limiter allowing perMinute requests per
// client with a burst of perMinute/4 (minimum 1).
func NewRateLimitMiddleware(perMinute int, m *metrics.Metrics) *RateLimitMiddleware {
	burst := perMinute / 4
	if burst < 1 {
		burst = 1
	}

	rl := &RateLimitMiddleware{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		metrics:  m,
	}

	go rl.cleanup()

	return rl
}

// Wrap wraps an http.Handler with rate limiting.
func (rl *RateLimitMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := r.RemoteAddr

		if !rl.limiterFor(client).Allow() {
			if rl.metrics != nil {
				rl.metrics.RateLimitHits.WithLabelValues(client).Inc()
			}
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimitMiddleware) limiterFor(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[client] = cl
	}
	cl.lastSeen = time.Now()

	return cl.limiter
}

// cleanup drops limiters for clients idle longer than ten minutes so the
// map does not grow without bound.
func (rl *RateLimitMiddleware) cleanup() {
	for {
		time.Sleep(time.Minute)

		rl.mu.Lock()
		for client, cl := range rl.limiters {
			if time.Since(cl.lastSeen) > 10*time.Minute {
				delete(rl.limiters, client)
			}
		}
		rl.mu.Unlock()
	}
}
