package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lawnchairsociety/shipyard/internal/config"
	"github.com/lawnchairsociety/shipyard/internal/logger"
)

// RateLimiter applies a token bucket per client IP to HTTP requests.
type RateLimiter struct {
	mu              sync.Mutex
	clients         map[string]*clientLimiter
	limit           rate.Limit
	burst           int
	enabled         bool
	trustProxy      bool
	idleAfter       time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		clients:         make(map[string]*clientLimiter),
		limit:           rate.Limit(cfg.RequestsPerSecond),
		burst:           cfg.Burst,
		enabled:         cfg.Enabled,
		trustProxy:      cfg.TrustProxy,
		idleAfter:       10 * time.Minute,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	// Use sensible defaults if not configured
	if rl.limit <= 0 {
		rl.limit = 10
	}
	if rl.burst <= 0 {
		rl.burst = 20
	}

	if rl.enabled {
		go rl.cleanupLoop()
	}

	return rl
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Allow reports whether ip may make a request now, consuming a token if so.
func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	c, exists := rl.clients[ip]
	if !exists {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

// Clients returns the number of tracked client IPs.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getRealIP(r, rl.trustProxy)
		if !rl.Allow(ip) {
			logger.Warning("Rate limit exceeded",
				"client_ip", ip,
				"method", r.Method,
				"path", r.URL.Path,
				"requests_per_second", float64(rl.limit),
				"burst", rl.burst)

			retry := time.Duration(float64(time.Second) / float64(rl.limit))
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retry.Round(time.Second)/time.Second))))
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cleanupLoop periodically removes idle clients.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			rl.cleanup(time.Now())
		}
	}
}

// cleanup drops clients not seen since idleAfter before now.
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.idleAfter)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}
