package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// maxColumnInt is the largest value an INTEGER column holds
const maxColumnInt = math.MaxInt32

// Event represents an event in the system
type Event struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Location    string    `json:"location" db:"location"`
	Date        time.Time `json:"date" db:"date"`
	Capacity    int       `json:"capacity" db:"capacity"`
	CategoryID  *int      `json:"category_id" db:"category_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// EventInput is the body accepted by the organizer create and update endpoints
type EventInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	Location    string  `json:"location" validate:"required,max=255"`
	Date        string  `json:"date" validate:"required"`
	Capacity    FlexInt `json:"capacity"`
	CategoryID  FlexInt `json:"category_id"`
}

// EventFields holds validated, typed event attributes ready to persist
type EventFields struct {
	Title       string
	Description string
	Location    string
	Date        time.Time
	Capacity    int
	CategoryID  *int
}

// dateLayouts are tried in order; the zone-less ones are read as UTC
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseEventDate parses the date formats accepted from clients
func ParseEventDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ValidateCreate validates event creation data; the date must be strictly after now.
func (in *EventInput) ValidateCreate(now time.Time) (*EventFields, error) {
	return in.validate(now, true)
}

// ValidateUpdate validates event update data. No temporal constraint applies to the date.
func (in *EventInput) ValidateUpdate(now time.Time) (*EventFields, error) {
	return in.validate(now, false)
}

func (in *EventInput) validate(now time.Time, requireFuture bool) (*EventFields, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Date = strings.TrimSpace(in.Date)

	verr := validateStruct(in)

	fields := &EventFields{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
	}

	if !verr.Has("date") {
		date, ok := ParseEventDate(in.Date)
		switch {
		case !ok:
			verr.Add("date", "The date field must be a valid date.")
		case requireFuture && !date.After(now):
			verr.Add("date", "The date field must be a date after now.")
		default:
			fields.Date = date
		}
	}

	switch {
	case !in.Capacity.Set:
		verr.Add("capacity", "The capacity field is required.")
	case !in.Capacity.Valid:
		verr.Add("capacity", "The capacity field must be an integer.")
	case in.Capacity.Value < 1:
		verr.Add("capacity", "The capacity field must be at least 1.")
	case in.Capacity.Value > maxColumnInt:
		verr.Add("capacity", fmt.Sprintf("The capacity field must not be greater than %d.", maxColumnInt))
	default:
		fields.Capacity = in.Capacity.Value
	}

	if in.CategoryID.Set {
		switch {
		case !in.CategoryID.Valid:
			verr.Add("category_id", "The category id field must be an integer.")
		case in.CategoryID.Value > maxColumnInt || in.CategoryID.Value < math.MinInt32:
			verr.Add("category_id", "The category id field is out of range.")
		default:
			categoryID := in.CategoryID.Value
			fields.CategoryID = &categoryID
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

// IsOwnedBy reports whether the organizer owns the event
func (e *Event) IsOwnedBy(organizerID int) bool {
	return e.UserID == organizerID
}

// IsUpcoming returns true if the event is in the future
func (e *Event) IsUpcoming() bool {
	return e.Date.After(time.Now())
}
