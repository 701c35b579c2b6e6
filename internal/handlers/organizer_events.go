package handlers

import (
	"net/http"

	"eventify/internal/models"
	"eventify/internal/services"
)

// OrganizerEventHandler handles the organizer's own events
type OrganizerEventHandler struct {
	eventService        services.EventServiceInterface
	registrationService services.RegistrationServiceInterface
}

// NewOrganizerEventHandler creates a new organizer event handler
func NewOrganizerEventHandler(eventService services.EventServiceInterface, registrationService services.RegistrationServiceInterface) *OrganizerEventHandler {
	return &OrganizerEventHandler{
		eventService:        eventService,
		registrationService: registrationService,
	}
}

// EventResponse wraps an event with a status message
type EventResponse struct {
	Message string        `json:"message"`
	Event   *models.Event `json:"event"`
}

// List handles GET /organisateur/events
func (h *OrganizerEventHandler) List(w http.ResponseWriter, r *http.Request) {
	session, err := currentSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	events, err := h.eventService.ListOwned(r.Context(), session.User.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// Create handles POST /organisateur/events
func (h *OrganizerEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := currentSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input models.EventInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.eventService.Create(r.Context(), session.User.ID, &input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, EventResponse{Message: "Événement créé avec succès", Event: event})
}

// Show handles GET /organisateur/events/{id}
func (h *OrganizerEventHandler) Show(w http.ResponseWriter, r *http.Request) {
	session, eventID, err := sessionAndEvent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.eventService.Get(r.Context(), eventID, session.User.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Update handles PUT and PATCH /organisateur/events/{id}
func (h *OrganizerEventHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, eventID, err := sessionAndEvent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input models.EventInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.eventService.Update(r.Context(), eventID, session.User.ID, &input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, EventResponse{Message: "Événement mis à jour avec succès", Event: event})
}

// Delete handles DELETE /organisateur/events/{id}
func (h *OrganizerEventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, eventID, err := sessionAndEvent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.eventService.Delete(r.Context(), eventID, session.User.ID); err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Événement supprimé avec succès")
}

// Registrations handles GET /organisateur/events/{id}/registrations
func (h *OrganizerEventHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	session, eventID, err := sessionAndEvent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	registrations, err := h.registrationService.ListForEvent(r.Context(), eventID, session.User.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registrations)
}
