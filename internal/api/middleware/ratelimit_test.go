package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, false)
	defer rl.Stop()
	now := time.Now()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("1.2.3.4", now), "request %d should pass", i+1)
	}
	assert.False(t, rl.allow("1.2.3.4", now), "fourth request in the window is rejected")
	assert.True(t, rl.allow("5.6.7.8", now), "other clients are unaffected")

	// Tokens refill at 3 per minute
	assert.True(t, rl.allow("1.2.3.4", now.Add(21*time.Second)))
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, false)
	defer rl.Stop()
	now := time.Now()
	rl.allow("1.2.3.4", now)
	rl.allow("5.6.7.8", now.Add(90*time.Second))

	rl.evictIdle(now.Add(2 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "1.2.3.4")
	assert.Contains(t, rl.clients, "5.6.7.8")
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, false)
	defer rl.Stop()
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discover", nil)
	req.RemoteAddr = "203.0.113.9:5555"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RateLimitExceeded")
}

func TestRateLimiter_SpoofedForwardingHeadersIgnored(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, false)
	defer rl.Stop()
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for _, forwarded := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/discover", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_Stop(t *testing.T) {
	rl := NewRateLimiter(1, time.Millisecond, false)
	rl.Stop()
	rl.Stop()

	select {
	case <-rl.done:
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name         string
		headers      map[string]string
		remoteAddr   string
		trustProxies bool
		want         string
	}{
		{name: "remote addr without port", remoteAddr: "203.0.113.9:1234", want: "203.0.113.9"},
		{name: "remote addr unparsable", remoteAddr: "pipe", want: "pipe"},
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, remoteAddr: "10.0.0.2:1", trustProxies: true, want: "198.51.100.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remoteAddr: "10.0.0.2:1", trustProxies: true, want: "198.51.100.7"},
		{name: "forwarded ignored when untrusted", headers: map[string]string{"X-Forwarded-For": "198.51.100.1"}, remoteAddr: "10.0.0.2:1", want: "10.0.0.2"},
		{name: "real ip ignored when untrusted", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remoteAddr: "10.0.0.2:1", want: "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req, tt.trustProxies))
		})
	}
}
