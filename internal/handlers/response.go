package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"eventify/internal/middleware"
	"eventify/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent, an encode error has no one to go to
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	middleware.WriteJSONError(w, status, message)
}

// writeError maps domain errors to HTTP statuses in one place
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, middleware.ErrorResponse{
			Message: verr.FirstMessage(),
			Errors:  verr.Fields,
		})
	case errors.Is(err, errBadRequest):
		writeMessage(w, http.StatusBadRequest, "Malformed request body.")
	case errors.Is(err, models.ErrEventNotFound):
		writeMessage(w, http.StatusNotFound, "Événement introuvable.")
	case errors.Is(err, models.ErrRegistrationNotFound):
		writeMessage(w, http.StatusNotFound, "Participant introuvable.")
	case errors.Is(err, models.ErrNotAuthorized):
		writeMessage(w, http.StatusForbidden, "Non autorisé.")
	case errors.Is(err, models.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "These credentials do not match our records.")
	case errors.Is(err, models.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
	case errors.Is(err, models.ErrEventFull):
		writeMessage(w, http.StatusConflict, "Cet événement est complet.")
	case errors.Is(err, models.ErrAlreadyRegistered):
		writeMessage(w, http.StatusConflict, "Vous êtes déjà inscrit(e) à cet événement.")
	case errors.Is(err, models.ErrAlreadyCheckedIn):
		writeMessage(w, http.StatusConflict, "Ce billet a déjà été validé.")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "Server Error")
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst zeroed
// so that field validation reports the missing fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadRequest
	}
	return nil
}

// eventIDParam parses the {id} route parameter. Ids that cannot name an
// event are reported as not found.
func eventIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, models.ErrEventNotFound
	}
	return id, nil
}

// currentSession returns the authenticated session. Routes using it are
// mounted behind RequireAuth.
func currentSession(r *http.Request) (*middleware.Session, error) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil || session.User == nil {
		return nil, models.ErrInvalidToken
	}
	return session, nil
}

// sessionAndEvent resolves the caller and the {id} route parameter
func sessionAndEvent(r *http.Request) (*middleware.Session, int, error) {
	session, err := currentSession(r)
	if err != nil {
		return nil, 0, err
	}
	eventID, err := eventIDParam(r)
	if err != nil {
		return nil, 0, err
	}
	return session, eventID, nil
}
