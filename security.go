package main

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter holds one token bucket per client IP. Each bucket allows a burst
// of rate requests and refills one token every interval/rate.
type RateLimiter struct {
	mu       sync.Mutex
	rate     int
	interval time.Duration
	limit    rate.Limit
	visitors map[string]*visitor

	stopCh    chan struct{}
	closeOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing n requests per interval per IP.
// Call Close to stop the background cleanup.
func NewRateLimiter(n int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		rate:     n,
		interval: interval,
		limit:    rate.Every(interval / time.Duration(max(n, 1))),
		visitors: make(map[string]*visitor),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a request from ip may proceed, consuming a token.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	c, ok := rl.visitors[ip]
	if !ok {
		c = &visitor{limiter: rate.NewLimiter(rl.limit, rl.rate)}
		rl.visitors[ip] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCh) })
}

// cleanup drops visitors idle for more than two intervals; their buckets are
// full again by then.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.interval * 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, c := range rl.visitors {
				if now.Sub(c.lastSeen) > rl.interval*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// SecurityConfig configures the HTTP front door
type SecurityConfig struct {
	// RateLimit is requests per minute per client IP; 0 disables limiting
	RateLimit int

	// MaxBodySize caps request bodies in bytes; 0 disables the cap
	MaxBodySize int64
}

// SecurityMiddleware applies per-IP rate limiting, body limits and response
// hardening headers in front of the HTTP handlers.
type SecurityMiddleware struct {
	next    http.Handler
	logger  *slog.Logger
	config  SecurityConfig
	limiter *RateLimiter
}

// NewSecurityMiddleware wraps next. Close releases the rate limiter.
func NewSecurityMiddleware(next http.Handler, logger *slog.Logger, config SecurityConfig) *SecurityMiddleware {
	sm := &SecurityMiddleware{next: next, logger: logger, config: config}
	if config.RateLimit > 0 {
		sm.limiter = NewRateLimiter(config.RateLimit, time.Minute)
	}
	return sm
}

func (sm *SecurityMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")

	if sm.limiter != nil {
		ip := clientIP(r)
		if !sm.limiter.Allow(ip) {
			sm.logger.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
	}

	if sm.config.MaxBodySize > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, sm.config.MaxBodySize)
	}

	sm.next.ServeHTTP(w, r)
}

// Close stops the rate limiter, if any.
func (sm *SecurityMiddleware) Close() {
	if sm.limiter != nil {
		sm.limiter.Close()
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
