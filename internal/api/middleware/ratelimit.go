package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/Togather-Foundation/eventplanner/internal/config"
	"golang.org/x/time/rate"
)

const (
	limiterTTL      = 15 * time.Minute
	cleanupInterval = 5 * time.Minute
)

// RateLimiter is a per-client token bucket limiter.
type RateLimiter struct {
	perMinute  int
	trusted    []*net.IPNet
	now        func() time.Time
	mu         sync.Mutex
	limiters   map[string]*limiterEntry
	stopOnce   sync.Once
	stopSignal chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter starts a limiter allowing cfg.PerMinute requests per client
// per minute, with a burst of the same size. A non-positive limit disables it.
// Call Stop to end the background cleanup.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	l := &RateLimiter{
		perMinute:  cfg.PerMinute,
		trusted:    parseCIDRs(cfg.TrustedProxyCIDRs),
		now:        time.Now,
		limiters:   make(map[string]*limiterEntry),
		stopSignal: make(chan struct{}),
	}
	if l.perMinute > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Middleware rejects clients over their budget with 429 and RATE_LIMITED.
// Health probes are never limited.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.perMinute <= 0 || r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
			next.ServeHTTP(w, r)
			return
		}

		if !l.limiter(l.clientKey(r)).Allow() {
			retryAfter := int(time.Minute / time.Duration(l.perMinute) / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			envelope.WriteError(w, r, apperror.New(http.StatusTooManyRequests, "Too many requests", apperror.CodeRateLimited))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	interval := time.Minute / time.Duration(l.perMinute)
	limiter := rate.NewLimiter(rate.Every(interval), l.perMinute)
	l.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

func (l *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopSignal:
			return
		}
	}
}

// cleanup drops limiters that have not been used within limiterTTL.
func (l *RateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(l.limiters, key)
		}
	}
}

// Stop ends the background cleanup goroutine. It is safe to call more than once.
func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopSignal) })
}

// clientKey identifies the caller. Forwarding headers are only trusted when
// the immediate peer is inside a configured proxy CIDR.
func (l *RateLimiter) clientKey(r *http.Request) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if l.isTrustedProxy(remoteIP) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}

	return remoteIP
}

func (l *RateLimiter) isTrustedProxy(ip string) bool {
	if len(l.trusted) == 0 {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, cidr := range l.trusted {
		if cidr.Contains(parsed) {
			return true
		}
	}
	return false
}

// parseCIDRs skips invalid entries; config validation reports them at load time.
func parseCIDRs(values []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(values))
	for _, value := range values {
		_, cidr, err := net.ParseCIDR(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		out = append(out, cidr)
	}
	return out
}
