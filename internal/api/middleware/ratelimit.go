package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"Lamia/internal/api/handlers"
)

// RateLimiter limits requests per client IP with a token bucket per client.
// State is in-memory, so limits apply per process.
type RateLimiter struct {
	clients      map[string]*clientLimit
	limit        rate.Limit
	burst        int
	idle         time.Duration
	trustProxies bool
	done         chan struct{}
	stopOnce     sync.Once
	mu           sync.Mutex
}

type clientLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing requests per window for
// each client, e.g. NewRateLimiter(100, time.Minute). Idle clients are
// forgotten after a window without requests. Call Stop to end the cleanup
// goroutine.
//
// Clients are identified by the connection's remote address unless
// trustProxies is set, in which case X-Forwarded-For and X-Real-IP are
// honoured. Only enable it behind a reverse proxy that overwrites them.
func NewRateLimiter(requests int, window time.Duration, trustProxies bool) *RateLimiter {
	rl := &RateLimiter{
		clients:      make(map[string]*clientLimit),
		limit:        rate.Limit(float64(requests) / window.Seconds()),
		burst:        requests,
		idle:         window,
		trustProxies: trustProxies,
		done:         make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Middleware returns a rate limiting middleware
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(getClientIP(r, rl.trustProxies), time.Now()) {
			w.Header().Set("Retry-After", "60")
			handlers.WriteError(w, http.StatusTooManyRequests, "RateLimitExceeded",
				"Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow checks if a client may make a request at now
func (rl *RateLimiter) allow(clientID string, now time.Time) bool {
	rl.mu.Lock()
	client, exists := rl.clients[clientID]
	if !exists {
		client = &clientLimit{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientID] = client
	}
	client.lastSeen = now
	rl.mu.Unlock()

	return client.limiter.AllowN(now, 1)
}

// cleanup removes idle client entries periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.evictIdle(now)
		case <-rl.done:
			return
		}
	}
}

// Stop ends the cleanup goroutine. The middleware keeps working afterwards
// but idle clients are no longer evicted.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for clientID, client := range rl.clients {
		if now.Sub(client.lastSeen) > rl.idle {
			delete(rl.clients, clientID)
		}
	}
}

// getClientIP extracts the client IP from the request. Forwarding headers
// are client-controlled and only read when trustProxies is set.
func getClientIP(r *http.Request, trustProxies bool) string {
	if trustProxies {
		// X-Forwarded-For may hold a chain; the first entry is the original client
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}

		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return realIP
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
