package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/rs/zerolog"
)

const CSRFHeader = "X-CSRF-Token"

// CSRFProtection applies double-submit cookie checks to requests whose
// organizer token came from the session cookie. Bearer tokens are never
// attached by the browser on their own, so those requests pass through.
type CSRFProtection struct {
	protect   func(http.Handler) http.Handler
	plaintext bool
}

// NewCSRFProtection builds the guard. trustedOrigins are browser origins,
// such as the SPA's, allowed to submit state-changing requests; wildcard
// entries are skipped.
func NewCSRFProtection(authKey []byte, secure bool, trustedOrigins []string) *CSRFProtection {
	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	}
	if hosts := originHosts(trustedOrigins); len(hosts) > 0 {
		opts = append(opts, csrf.TrustedOrigins(hosts))
	}

	return &CSRFProtection{
		protect:   csrf.Protect(authKey, opts...),
		plaintext: !secure,
	}
}

// CookieSessions runs behind RequireAuth
func (c *CSRFProtection) CookieSessions(next http.Handler) http.Handler {
	guarded := c.wrap(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := SessionFromContext(r.Context()); session != nil && session.FromCookie {
			guarded.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenHandler sets the CSRF cookie and returns the matching token, which
// the SPA echoes in the X-CSRF-Token header
func (c *CSRFProtection) TokenHandler() http.Handler {
	return c.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := csrf.Token(r)
		w.Header().Set(CSRFHeader, token)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"csrf_token": token})
	}))
}

func (c *CSRFProtection) wrap(next http.Handler) http.Handler {
	protected := c.protect(next)
	if !c.plaintext {
		return protected
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	zerolog.Ctx(r.Context()).Warn().Err(csrf.FailureReason(r)).Msg("csrf check failed")
	WriteJSONError(w, http.StatusForbidden, "CSRF token mismatch.")
}

func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, origin := range origins {
		if strings.Contains(origin, "*") {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
