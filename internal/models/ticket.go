package models

import (
	"fmt"
	"strings"
	"time"
)

// Ticket is the artifact delivered to a participant. It is derived from a
// registration on every request and never stored.
type Ticket struct {
	EventID       int    `json:"event_id"`
	ParticipantID string `json:"participant_id"`
	CheckInURL    string `json:"check_in_url"`
	QRCodeSVG     []byte `json:"-"`
	QRCodeBase64  string `json:"qr_code_base64"`
}

// CheckInURL builds {base}/events/{event_id}/check-in/{participant_id}
func CheckInURL(baseURL string, eventID int, participantID string) string {
	return fmt.Sprintf("%s/events/%d/check-in/%s", strings.TrimRight(baseURL, "/"), eventID, participantID)
}

// DataURI returns the QR image as an inline data URI for HTML embedding
func (t *Ticket) DataURI() string {
	return "data:image/svg+xml;base64," + t.QRCodeBase64
}

// TicketDelivery is everything a mail worker needs to send a ticket. It is
// self-contained so it can travel through an external queue.
type TicketDelivery struct {
	EventID          int       `json:"event_id"`
	EventTitle       string    `json:"event_title"`
	EventLocation    string    `json:"event_location"`
	EventDate        time.Time `json:"event_date"`
	ParticipantID    string    `json:"participant_id"`
	ParticipantName  string    `json:"participant_name"`
	ParticipantEmail string    `json:"participant_email"`
	CheckInURL       string    `json:"check_in_url"`
	QRCodeBase64     string    `json:"qr_code_base64"`
}

// NewTicketDelivery assembles a delivery from its parts
func NewTicketDelivery(event *Event, registration *Registration, ticket *Ticket) *TicketDelivery {
	return &TicketDelivery{
		EventID:          event.ID,
		EventTitle:       event.Title,
		EventLocation:    event.Location,
		EventDate:        event.Date,
		ParticipantID:    registration.ID,
		ParticipantName:  registration.Name,
		ParticipantEmail: registration.Email,
		CheckInURL:       ticket.CheckInURL,
		QRCodeBase64:     ticket.QRCodeBase64,
	}
}
