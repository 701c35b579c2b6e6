package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyTrust_ClientIP(t *testing.T) {
	trust, err := NewProxyTrust([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		trust      *ProxyTrust
		remoteAddr string
		xff        string
		realIP     string
		wantIP     string
	}{
		{"remote addr", nil, "10.0.0.1:5555", "", "", "10.0.0.1"},
		{"untrusted peer ignores forwarded for", trust, "198.51.100.7:5555", "203.0.113.9", "", "198.51.100.7"},
		{"untrusted peer ignores real ip", trust, "198.51.100.7:5555", "", "203.0.113.9", "198.51.100.7"},
		{"no trusted proxies ignores headers", nil, "10.0.0.1:5555", "203.0.113.9", "203.0.113.10", "10.0.0.1"},
		{"trusted proxy forwards client", trust, "10.0.0.1:5555", "203.0.113.9", "", "203.0.113.9"},
		{"spoofed leftmost hop", trust, "10.0.0.1:5555", "1.2.3.4, 203.0.113.9", "", "203.0.113.9"},
		{"chain of trusted proxies", trust, "10.0.0.1:5555", "203.0.113.9, 10.0.0.5, 10.0.0.6", "", "203.0.113.9"},
		{"malformed hop stops the walk", trust, "10.0.0.1:5555", "203.0.113.9, junk, 10.0.0.6", "", "10.0.0.6"},
		{"trusted proxy real ip", trust, "10.0.0.1:5555", "", "198.51.100.4", "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.wantIP, tt.trust.ClientIP(req))
		})
	}
}

func TestNewProxyTrust_RejectsInvalidRange(t *testing.T) {
	_, err := NewProxyTrust([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

func TestGetClientIP_WithoutMiddlewareUsesPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.Header.Set("X-Real-IP", "203.0.113.10")

	assert.Equal(t, "198.51.100.7", getClientIP(req))
}

func TestRateLimit_IgnoresRotatingForwardedFor(t *testing.T) {
	rl := NewRateLimiter(1)
	handler := ClientIPMiddleware(nil)(RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "198.51.100.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i+1))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
}

func TestRateLimit_TrustedProxyKeysOnForwardedClient(t *testing.T) {
	trust, err := NewProxyTrust([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	rl := NewRateLimiter(1)
	handler := ClientIPMiddleware(trust)(RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", client)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.9"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.9"))
	assert.Equal(t, http.StatusOK, send("203.0.113.10"))
}
