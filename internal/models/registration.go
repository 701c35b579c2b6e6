package models

import (
	"strings"
	"time"
)

// Registration is a participant's seat at an event. Its ID is the
// participant identifier embedded in the ticket's check-in URL.
type Registration struct {
	ID          string     `json:"id" db:"id"`
	EventID     int        `json:"event_id" db:"event_id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// RegistrationRequest is the public registration form
type RegistrationRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// Validate validates the participant identity
func (req *RegistrationRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)
	return validateStruct(req).Err()
}

// IsCheckedIn returns true once the participant has been admitted
func (r *Registration) IsCheckedIn() bool {
	return r.CheckedInAt != nil
}
