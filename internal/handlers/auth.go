package handlers

import (
	"net/http"
	"time"

	"eventify/internal/auth"
	"eventify/internal/models"
	"eventify/internal/services"

	"github.com/rs/zerolog"
)

// AuthHandler handles organizer registration, login and logout
type AuthHandler struct {
	authService services.AuthServiceInterface
	tokens      auth.TokenStore
}

// NewAuthHandler creates a new authentication handler. tokens may be nil
// when only bearer headers are used.
func NewAuthHandler(authService services.AuthServiceInterface, tokens auth.TokenStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
	}
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.remember(w, r, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.remember(w, r, resp)
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := currentSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.authService.Logout(r.Context(), session.Claims); err != nil {
		writeError(w, r, err)
		return
	}

	if h.tokens != nil {
		if err := h.tokens.Clear(w, r); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to clear session cookie")
		}
	}

	writeMessage(w, http.StatusOK, "Déconnexion réussie.")
}

// Me handles GET /user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, err := currentSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.User)
}

// remember stores the token in the session cookie for browser clients
func (h *AuthHandler) remember(w http.ResponseWriter, r *http.Request, resp *services.AuthResponse) {
	if h.tokens == nil {
		return
	}
	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	if maxAge < 1 {
		return
	}
	if err := h.tokens.Save(w, r, resp.Token, maxAge); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to persist session cookie")
	}
}
