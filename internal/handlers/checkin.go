package handlers

import (
	"net/http"

	"eventify/internal/services"

	"github.com/go-chi/chi/v5"
)

// CheckInHandler serves the URLs encoded in ticket QR codes
type CheckInHandler struct {
	registrationService services.RegistrationServiceInterface
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(registrationService services.RegistrationServiceInterface) *CheckInHandler {
	return &CheckInHandler{registrationService: registrationService}
}

// Show handles GET /events/{id}/check-in/{participant}
func (h *CheckInHandler) Show(w http.ResponseWriter, r *http.Request) {
	session, eventID, err := sessionAndEvent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	registration, err := h.registrationService.GetParticipant(r.Context(), eventID, session.User.ID, chi.URLParam(r, "participant"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registration)
}

// CheckIn handles POST /events/{id}/check-in/{participant}
func (h *CheckInHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	session, eventID, err := sessionAndEvent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	registration, err := h.registrationService.CheckIn(r.Context(), eventID, session.User.ID, chi.URLParam(r, "participant"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Participant enregistré à l'entrée.",
		"participant": registration,
	})
}
