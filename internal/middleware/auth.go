package middleware

import (
	"context"
	"errors"
	"net/http"

	"eventify/internal/auth"
	"eventify/internal/models"
	"eventify/internal/services"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	SessionContextKey contextKey = "session"
)

// Session is the authenticated organizer attached to a request
type Session struct {
	User   *models.User
	Claims *auth.Claims
	Token  string

	// FromCookie marks tokens read from the session cookie, which the
	// browser attaches on its own and so need CSRF protection
	FromCookie bool
}

// AuthMiddleware resolves bearer tokens to organizers
type AuthMiddleware struct {
	authService services.AuthServiceInterface
	tokens      auth.TokenStore
	logger      zerolog.Logger
}

// NewAuthMiddleware creates a new authentication middleware. tokens may be
// nil, in which case only the Authorization header is consulted.
func NewAuthMiddleware(authService services.AuthServiceInterface, tokens auth.TokenStore, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		tokens:      tokens,
		logger:      logger,
	}
}

// RequireAuth rejects requests without a valid, unrevoked token with 401
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, fromCookie, ok := m.token(r)
		if !ok {
			WriteJSONError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		user, claims, err := m.authService.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, models.ErrInvalidToken) {
				m.logger.Error().Err(err).Msg("token authentication failed")
			}
			WriteJSONError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		ctx := r.Context()
		recordUser(ctx, user.ID)
		logger := zerolog.Ctx(ctx).With().Int("user_id", user.ID).Logger()
		ctx = logger.WithContext(ctx)
		ctx = SetSessionContext(ctx, &Session{User: user, Claims: claims, Token: token, FromCookie: fromCookie})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// token prefers the Authorization header and falls back to the session cookie
func (m *AuthMiddleware) token(r *http.Request) (token string, fromCookie, ok bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, err := auth.TokenFromHeader(header)
		return token, false, err == nil && token != ""
	}
	if m.tokens != nil {
		token, ok := m.tokens.Load(r)
		return token, true, ok
	}
	return "", false, false
}

// SessionFromContext retrieves the session from context
func SessionFromContext(ctx context.Context) *Session {
	if session, ok := ctx.Value(SessionContextKey).(*Session); ok {
		return session
	}
	return nil
}

// GetUserFromContext retrieves the organizer from context
func GetUserFromContext(ctx context.Context) *models.User {
	if session := SessionFromContext(ctx); session != nil {
		return session.User
	}
	return nil
}

// SetSessionContext adds the session to context
func SetSessionContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}
