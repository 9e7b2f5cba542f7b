package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/utafrali/litreads/pkg/httputil"
)

// client tracks a token bucket per remote IP.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore manages per-IP limiters and evicts entries idle for longer
// than ttl.
type limiterStore struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	nowFunc func() time.Time
}

func newLimiterStore(rps float64, burst int, ttl time.Duration) *limiterStore {
	return &limiterStore{
		clients: make(map[string]*client),
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[ip] = c
	}
	c.lastSeen = s.nowFunc()
	return c.limiter
}

func (s *limiterStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for ip, c := range s.clients {
		if now.Sub(c.lastSeen) > s.ttl {
			delete(s.clients, ip)
		}
	}
}

func (s *limiterStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// run evicts idle clients every ttl until ctx is cancelled.
func (s *limiterStore) run(ctx context.Context) {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	RPS   float64
	Burst int
	// TrustProxyHeaders keys buckets on X-Forwarded-For / X-Real-IP. Enable
	// only behind a proxy that overwrites them; otherwise RemoteAddr is used.
	TrustProxyHeaders bool
	// OnLimited renders the rejection. When nil a JSON 429 is written.
	OnLimited http.Handler
}

const limiterIdleTTL = 3 * time.Minute

// RateLimit enforces a per-IP token bucket. The eviction loop stops when
// ctx is cancelled.
func RateLimit(ctx context.Context, cfg RateLimitConfig, l *slog.Logger) func(http.Handler) http.Handler {
	store := newLimiterStore(cfg.RPS, cfg.Burst, limiterIdleTTL)
	go store.run(ctx)
	return rateLimitWith(store, cfg.TrustProxyHeaders, cfg.OnLimited, l)
}

func rateLimitWith(store *limiterStore, trustProxy bool, onLimited http.Handler, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustProxy)
			if store.get(ip).Allow() {
				next.ServeHTTP(w, r)
				return
			}

			l.WarnContext(r.Context(), "rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			if onLimited != nil {
				onLimited.ServeHTTP(w, r)
				return
			}
			httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "RATE_LIMITED", Message: "too many requests"},
			})
		})
	}
}

// clientIP returns the host part of RemoteAddr. With trustProxy it prefers
// the first valid address in X-Forwarded-For, then X-Real-IP.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func forwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
