package services

import (
	"context"
	"errors"
	"time"

	"eventify/internal/models"
	"eventify/internal/repositories"

	"github.com/rs/zerolog"
)

// PublicPageSize is the fixed page size of the public catalog
const PublicPageSize = 10

// EventRepository interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	GetByIDAndOwner(ctx context.Context, id, organizerID int) (*models.Event, error)
	Exists(ctx context.Context, id int) (bool, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id, organizerID int) error
	ListByOwner(ctx context.Context, organizerID int) ([]*models.Event, error)
	Search(ctx context.Context, filters repositories.EventSearchFilters) ([]*models.Event, int, error)
}

// PublicEventQuery is the public catalog request
type PublicEventQuery struct {
	Search     string
	CategoryID *int
	Page       int
}

type EventServiceOptions struct {
	// HideExistence reports foreign events as not found instead of
	// forbidden.
	HideExistence bool
	Now           func() time.Time
}

type EventService struct {
	events        EventRepository
	hideExistence bool
	now           func() time.Time
	logger        zerolog.Logger
}

func NewEventService(events EventRepository, opts EventServiceOptions, logger zerolog.Logger) *EventService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:        events,
		hideExistence: opts.HideExistence,
		now:           now,
		logger:        logger.With().Str("component", "event_service").Logger(),
	}
}

// ListOwned returns the organizer's events, newest first
func (s *EventService) ListOwned(ctx context.Context, organizerID int) ([]*models.Event, error) {
	return s.events.ListByOwner(ctx, organizerID)
}

func (s *EventService) Create(ctx context.Context, organizerID int, input *models.EventInput) (*models.Event, error) {
	fields, err := input.ValidateCreate(s.now())
	if err != nil {
		return nil, err
	}

	event := &models.Event{UserID: organizerID}
	applyFields(event, fields)

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().Int("event_id", event.ID).Int("user_id", organizerID).Msg("event created")
	return event, nil
}

// Get returns an event only to its owner
func (s *EventService) Get(ctx context.Context, eventID, organizerID int) (*models.Event, error) {
	return s.owned(ctx, eventID, organizerID)
}

// Update fully replaces the event's editable fields. A past date is
// accepted here, unlike on create.
func (s *EventService) Update(ctx context.Context, eventID, organizerID int, input *models.EventInput) (*models.Event, error) {
	event, err := s.owned(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}

	fields, err := input.ValidateUpdate(s.now())
	if err != nil {
		return nil, err
	}
	applyFields(event, fields)

	if err := s.events.Update(ctx, event); err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			// deleted or reassigned between the read and the write
			return nil, s.missing(ctx, eventID)
		}
		return nil, err
	}

	s.logger.Info().Int("event_id", event.ID).Int("user_id", organizerID).Msg("event updated")
	return event, nil
}

// Delete hard-deletes an owned event together with its registrations
func (s *EventService) Delete(ctx context.Context, eventID, organizerID int) error {
	err := s.events.Delete(ctx, eventID, organizerID)
	if err == nil {
		s.logger.Info().Int("event_id", eventID).Int("user_id", organizerID).Msg("event deleted")
		return nil
	}
	if errors.Is(err, models.ErrEventNotFound) {
		return s.missing(ctx, eventID)
	}
	return err
}

// ListPublic searches the catalog by title or location, ten per page
func (s *EventService) ListPublic(ctx context.Context, query PublicEventQuery) (*models.Page[*models.Event], error) {
	page := query.Page
	if page < 1 {
		page = 1
	}

	events, total, err := s.events.Search(ctx, repositories.EventSearchFilters{
		Query:      query.Search,
		CategoryID: query.CategoryID,
		Limit:      PublicPageSize,
		Offset:     (page - 1) * PublicPageSize,
	})
	if err != nil {
		return nil, err
	}

	return models.NewPage(events, total, page, PublicPageSize), nil
}

// GetPublic returns any event by id
func (s *EventService) GetPublic(ctx context.Context, eventID int) (*models.Event, error) {
	return s.events.GetByID(ctx, eventID)
}

// owned performs the owner-scoped lookup. Ownership is checked on every
// call.
func (s *EventService) owned(ctx context.Context, eventID, organizerID int) (*models.Event, error) {
	event, err := s.events.GetByIDAndOwner(ctx, eventID, organizerID)
	if err == nil {
		return event, nil
	}
	if errors.Is(err, models.ErrEventNotFound) {
		return nil, s.missing(ctx, eventID)
	}
	return nil, err
}

// missing decides between 404 and 403 after an owner-scoped miss
func (s *EventService) missing(ctx context.Context, eventID int) error {
	if s.hideExistence {
		return models.ErrEventNotFound
	}

	exists, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrNotAuthorized
	}
	return models.ErrEventNotFound
}

func applyFields(event *models.Event, fields *models.EventFields) {
	event.Title = fields.Title
	event.Description = fields.Description
	event.Location = fields.Location
	event.Date = fields.Date
	event.Capacity = fields.Capacity
	event.CategoryID = fields.CategoryID
}
