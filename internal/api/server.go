// Package api exposes the thin HTTP surface over the collector, frame
// builder, and attributor. The core logic is library-first; this package
// only marshals requests and responses.
package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"social-graph-atlas/internal/attribution"
	"social-graph-atlas/internal/collector"
	"social-graph-atlas/internal/config"
	"social-graph-atlas/internal/frame"
	"social-graph-atlas/internal/store"
)

// Version is the build version string reported by GET /. main does not set
// it; it stays "dev" unless overridden at link time via -ldflags.
var Version = "dev"

// Server wires the HTTP surface to the underlying library packages.
type Server struct {
	st          *store.Store
	collector   *collector.Collector
	builder     *frame.Builder
	attributor  *attribution.Attributor
	cfg         config.Settings
	httpServer  *http.Server
	limiter     *ipLimiter
}

func NewServer(st *store.Store, coll *collector.Collector, builder *frame.Builder, attr *attribution.Attributor, cfg config.Settings) *Server {
	r := mux.NewRouter()

	s := &Server{
		st:         st,
		collector:  coll,
		builder:    builder,
		attributor: attr,
		cfg:        cfg,
		limiter:    newIPLimiter(20, 40, 15*time.Minute),
	}

	r.Use(commonMiddleware)
	r.Use(s.rateLimitMiddleware)

	registerBaseRoutes(r, s)
	registerCollectionRoutes(r, s)
	registerQueryRoutes(r, s)
	registerFrameRoutes(r, s)
	registerTimelineRoutes(r, s)

	s.httpServer = &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}
	return s
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func commonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ipLimiter is a per-client-IP token bucket, same shape as the teacher's
// rate limiter but without the env-var wiring: NewServer builds it with
// fixed limits that no setting changes.
type ipLimiter struct {
	mu          sync.Mutex
	entries     map[string]*rate.Limiter
	lastSeen    map[string]time.Time
	lastCleanup time.Time

	rps   rate.Limit
	burst int
	ttl   time.Duration
}

func newIPLimiter(rps float64, burst int, ttl time.Duration) *ipLimiter {
	return &ipLimiter{
		entries:  make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastCleanup.IsZero() || now.Sub(l.lastCleanup) > time.Minute {
		for k, t := range l.lastSeen {
			if now.Sub(t) > l.ttl {
				delete(l.lastSeen, k)
				delete(l.entries, k)
			}
		}
		l.lastCleanup = now
	}

	lim := l.entries[ip]
	if lim == nil {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.entries[ip] = lim
	}
	l.lastSeen[ip] = now
	return lim.Allow()
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientIP(r)
		if !s.limiter.allow(ip) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate_limited","message":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if parts := strings.Split(xff, ","); len(parts) > 0 {
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func parseLimitOffset(r *http.Request, defaultLimit int) int {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	return limit
}
