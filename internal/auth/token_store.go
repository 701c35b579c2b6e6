package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// TokenStore persists the bearer token between requests for clients that
// rely on cookies instead of setting the Authorization header themselves.
type TokenStore interface {
	Load(r *http.Request) (string, bool)
	Save(w http.ResponseWriter, r *http.Request, token string, maxAge int) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

const tokenKey = "token"

// CookieTokenStore keeps the token in a signed gorilla/sessions cookie
type CookieTokenStore struct {
	store       sessions.Store
	sessionName string
}

func NewCookieTokenStore(store sessions.Store, sessionName string) *CookieTokenStore {
	return &CookieTokenStore{store: store, sessionName: sessionName}
}

// NewCookieStore builds the signed cookie store used for API sessions
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *CookieTokenStore) Load(r *http.Request) (string, bool) {
	session, err := s.store.Get(r, s.sessionName)
	if err != nil {
		return "", false
	}
	token, ok := session.Values[tokenKey].(string)
	return token, ok && token != ""
}

func (s *CookieTokenStore) Save(w http.ResponseWriter, r *http.Request, token string, maxAge int) error {
	// Get returns a fresh session alongside a decode error, which is fine
	// to overwrite here.
	session, _ := s.store.Get(r, s.sessionName)
	session.Values[tokenKey] = token
	session.Options.MaxAge = maxAge
	return session.Save(r, w)
}

func (s *CookieTokenStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, s.sessionName)
	delete(session.Values, tokenKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
