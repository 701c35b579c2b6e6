package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"eventify/internal/models"
	"eventify/internal/services"
)

// PublicHandler serves the catalog and participant registration
type PublicHandler struct {
	eventService        services.EventServiceInterface
	registrationService services.RegistrationServiceInterface
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(eventService services.EventServiceInterface, registrationService services.RegistrationServiceInterface) *PublicHandler {
	return &PublicHandler{
		eventService:        eventService,
		registrationService: registrationService,
	}
}

// RegistrationResponse is the body of a successful registration
type RegistrationResponse struct {
	Message     string              `json:"message"`
	EventTitle  string              `json:"event_title"`
	Participant ParticipantResponse `json:"participant"`
}

// ParticipantResponse echoes the registered participant
type ParticipantResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	EventID int    `json:"event_id"`
}

// ListEvents handles GET /events?search=&page=&category=
func (h *PublicHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := services.PublicEventQuery{
		Search: strings.TrimSpace(q.Get("search")),
		Page:   1,
	}

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "The page parameter must be an integer.")
			return
		}
		query.Page = page
	}

	// non-numeric categories are ignored like an absent filter
	if categoryStr := q.Get("category"); categoryStr != "" {
		if categoryID, err := strconv.Atoi(categoryStr); err == nil {
			query.CategoryID = &categoryID
		}
	}

	page, err := h.eventService.ListPublic(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetEvent handles GET /events/{id}
func (h *PublicHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.eventService.GetPublic(r.Context(), eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Register handles POST /events/{id}/register. The response does not
// depend on whether the ticket email goes out.
func (h *PublicHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.RegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.registrationService.Register(r.Context(), eventID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegistrationResponse{
		Message:    "Inscription réussie ! Votre billet vous a été envoyé par email.",
		EventTitle: result.Event.Title,
		Participant: ParticipantResponse{
			ID:      result.Registration.ID,
			Name:    result.Registration.Name,
			Email:   result.Registration.Email,
			EventID: result.Registration.EventID,
		},
	})
}
