package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
)

const clientIPKey contextKey = "client_ip"

// ProxyTrust decides which peers may report the client address through
// X-Forwarded-For or X-Real-IP. A nil ProxyTrust trusts nobody.
type ProxyTrust struct {
	networks []*net.IPNet
}

// NewProxyTrust parses the trusted proxy ranges
func NewProxyTrust(cidrs []string) (*ProxyTrust, error) {
	trust := &ProxyTrust{}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", cidr, err)
		}
		trust.networks = append(trust.networks, network)
	}
	return trust, nil
}

func (p *ProxyTrust) trusts(ip net.IP) bool {
	if p == nil || ip == nil {
		return false
	}
	for _, network := range p.networks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the client behind any trusted proxies.
// Forwarding headers are read only when the peer itself is trusted, and
// X-Forwarded-For is walked from the right so a client cannot prepend a
// spoofed hop.
func (p *ProxyTrust) ClientIP(r *http.Request) string {
	host := remoteHost(r)
	peer := net.ParseIP(host)
	if !p.trusts(peer) {
		return host
	}

	client := peer
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := net.ParseIP(strings.TrimSpace(hops[i]))
			if hop == nil {
				break
			}
			client = hop
			if !p.trusts(hop) {
				break
			}
		}
		return client.String()
	}

	if realIP := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); realIP != nil {
		return realIP.String()
	}
	return client.String()
}

// ClientIPMiddleware resolves the client address once per request for the
// rate limiters and the access log
func ClientIPMiddleware(trust *ProxyTrust) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), clientIPKey, trust.ClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// getClientIP returns the address resolved by ClientIPMiddleware, or the
// connection's peer when the middleware did not run
func getClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
